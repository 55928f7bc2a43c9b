// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

/*
bio-intervals manipulates interval lists: set algebra across several lists,
padding, inversion and scattering (tools), BED conversion
(bed-to-intervals), and splitting a reference at runs of Ns
(scatter-by-ns).
*/

import (
	"fmt"
	"strings"

	"v.io/x/lib/cmdline"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func checkArgs(name string, argv []string, n int, argsName string) error {
	if len(argv) != n {
		return fmt.Errorf("%s takes %s, but got %v", name, argsName, argv)
	}
	return nil
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-intervals",
			Short:    "Tools for working with interval lists",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdTools(),
				newCmdBEDToIntervals(),
				newCmdScatterByNs(),
			},
		})
}
