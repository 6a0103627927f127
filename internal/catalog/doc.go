// Package catalog loads the human-authored sample catalog: an ordered
// list of operation groups, each listing the parameterizations to
// characterize. Catalogs are written in CUE and loaded through the CUE SDK
// (not a CLI subprocess), so schema errors carry file positions.
package catalog
