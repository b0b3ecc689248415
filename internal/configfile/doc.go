// Package configfile saves and loads pipeline graphs as HCL.
//
// Each node becomes one labelled block; the label is a key derived from the
// node's name and made unique in insertion order. Edges are recorded on the
// child as a list of parent keys:
//
//	node "counts" {
//	  position = [0.25, 0.5]
//	  plugin   = "csvload"
//
//	  config {
//	    paths = ["counts.csv"]
//	  }
//	}
//
//	node "filtered" {
//	  position = [0.75, 0.5]
//	  plugin   = "regextool"
//	  parents  = ["counts"]
//	}
//
// Loaded nodes start dirty; results are never persisted.
package configfile
