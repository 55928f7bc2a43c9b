// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package intervaltree implements a map from integer ranges to values, stored
  as a red-black tree ordered by (start, end).

  Each node also tracks the size of its subtree, which supports rank queries
  (FindByIndex, Index), and the largest end coordinate in its subtree, which
  lets overlap queries skip subtrees that end before the query begins.

  A range is half-open for overlap purposes: [s1, e1) and [s2, e2) overlap iff
  s1 < e2 && s2 < e1.  Keys are compared as (start, end) pairs, so
  Put(5, 5, v) and Put(5, 6, v) create two distinct entries.

  Nodes live in a slice owned by the Tree and refer to each other by index.
  Freed slots are recycled; every slot carries a generation counter so that an
  iterator holding a stale slot can tell that its entry went away.

  A Tree is not safe for concurrent use.
*/
package intervaltree
