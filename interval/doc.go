// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package interval implements 1-based closed genomic intervals and the
  operations built on them: an overlap detector (a per-sequence interval tree
  index from regions to caller objects), interval lists carrying a SAM-style
  sequence dictionary, and set algebra over such lists (union, intersection,
  subtraction, symmetric difference, inversion and scatter).

  It also reads and writes the interval-list text format (a SAM header
  followed by "sequence start end strand name" records), converts BED files,
  and provides Union, a compact position index over a merged list that is
  optimized for ascending point queries.
*/
package interval
