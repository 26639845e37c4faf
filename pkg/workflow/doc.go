// Package workflow implements the editorial state machine of content items.
//
// A catalog is a set of domain.WorkflowState values whose allowed-transition
// lists form a directed graph. The pure functions (ValidateTransition,
// AllowedTransitions, ValidateCatalog) work on any catalog; Engine applies
// transitions to content stored in the remote graph through HAS_STATE edges.
package workflow
