// Package plugin defines the contract between the pipeline core and the
// processing units that nodes wrap.
//
// A Plugin declares descriptive Metadata, a typed parameter schema (ParamSet)
// and a Run operation over tables. The core never looks past this contract:
// it fills parameters from forms or configuration files, hands the plugin its
// parents' outputs and stores whatever table comes back.
//
// The set of available plugins lives in a Catalog that is built once at
// startup from a list of Modules and passed explicitly to whatever needs it.
// There is no process-wide lookup, so graphs and tests can use their own
// catalogs.
package plugin
