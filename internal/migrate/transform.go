package migrate

import "strings"

// Transform maps one record to at most one write instruction. Records whose
// source value is absent or blank after trimming produce none. Pure: no
// side effects, no I/O.
func Transform(rec Record) (WriteInstruction, bool) {
	value := strings.TrimSpace(rec.Source)
	if value == "" {
		return WriteInstruction{}, false
	}
	return WriteInstruction{ID: rec.ID, Values: []string{value}}, true
}

// TransformAll maps records in input order. Dropped records are omitted,
// not replaced with holes.
func TransformAll(records []Record) []WriteInstruction {
	instructions := make([]WriteInstruction, 0, len(records))
	for _, rec := range records {
		if instr, ok := Transform(rec); ok {
			instructions = append(instructions, instr)
		}
	}
	return instructions
}
