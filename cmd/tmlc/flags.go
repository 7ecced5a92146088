package main

import "strings"

// stringSliceFlag accumulates repeated occurrences of a flag in argument
// order, satisfying spec.md §6's "repetition is honored and order is
// preserved" requirement for -i/-x and the *_attrs flags.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}
