// Package ranker picks the single best network for a connectivity request.
//
// # Reading Guide
//
// Start with these files:
//   - network.go: Scoreable candidates (Network, Offer) and the Request they must satisfy
//   - score.go: policy bits and the sticky-flag rules of Score
//   - ranker.go: the Ranker and its hot-swappable Configuration
//   - cascade.go: the policy cascade, step by step
//
// # Architecture
//
// Selection runs in two stages. FilterSatisfying keeps the candidates whose
// Capabilities satisfy the Request; when more than one survives, the policy
// cascade narrows them to exactly one winner. MightBeat reuses the same
// cascade on {champion, contestant} to tell a network provider whether an
// offer could ever win.
//
// Sub-packages:
//   - ranker/trace/: pure-data decision records produced by Ranker.Explain
//   - ranker/watch/: fsnotify-based hot reload of the Configuration file
//
// The engine holds no state besides its Configuration. Candidates are read-only
// snapshots for the duration of a call; callers serialize mutation of
// candidate state with ranking.
package ranker
