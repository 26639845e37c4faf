package cms

// Version is the release of the module. Builds may override it with
// -ldflags "-X github.com/flxbl-dev/kickass-cms-sub000.Version=...".
var Version = "0.1.0"
