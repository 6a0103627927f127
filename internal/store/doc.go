// Package store persists the growing data-point set across process
// interruptions. A checkpoint is written after every completed
// parameterization as a full overwrite of the previous file, so at most one
// parameterization's work is lost when a multi-hour run is killed; on
// restart, load rebuilds the dedup index from the checkpoint's signatures and
// the run skips everything already recorded.
package store
