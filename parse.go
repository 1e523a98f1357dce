package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseLabels reads a starting arrangement. The compact form "389125467"
// gives one label per digit; anything containing whitespace or commas is
// split into fields so labels above 9 can be written out.
func ParseLabels(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: no labels given", ErrValidation)
	}

	isSep := func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}

	if !strings.ContainsFunc(s, isSep) {
		labels := make([]int, 0, len(s))
		for i, r := range s {
			if r < '0' || r > '9' {
				return nil, fmt.Errorf("%w: %q at offset %d is not a digit", ErrValidation, r, i)
			}
			labels = append(labels, int(r-'0'))
		}
		return labels, nil
	}

	fields := strings.FieldsFunc(s, isSep)
	labels := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: label %q is not a number", ErrValidation, f)
		}
		labels = append(labels, v)
	}
	return labels, nil
}

// FormatLabels is the inverse of ParseLabels, preferring the compact form.
func FormatLabels(labels []int) string {
	compact := true
	for _, v := range labels {
		if v < 0 || v > 9 {
			compact = false
			break
		}
	}

	parts := make([]string, len(labels))
	for i, v := range labels {
		parts[i] = strconv.Itoa(v)
	}
	if compact {
		return strings.Join(parts, "")
	}
	return strings.Join(parts, " ")
}
