// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package locus walks a coordinate-sorted stream of alignments and yields, for
  each reference position selected by a Mask, the reads covering it together
  with their offsets into the read.

  A Mask picks the positions of interest: either every base of the genome
  (WholeGenomeMask) or the bases covered by an interval list
  (IntervalListMask).  Positions are 1-based and sequences are identified by
  their index in the SAM sequence dictionary.

  Typical usage:

    w, err := locus.NewWalker(header, records, locus.DefaultOpts)
    ...
    it, err := w.Iterator()
    ...
    for it.Scan() {
      info := it.Info()
      ...
    }
    if err := it.Close(); err != nil {
      ...
    }
*/
package locus
