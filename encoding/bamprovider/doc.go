// Package bamprovider reads coordinate-sorted alignments from BAM or SAM
// files for the locus walker.
//
// The Provider is an interface for reading an alignment file; NewProvider
// picks the implementation from the path.
package bamprovider
