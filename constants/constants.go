// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go: Compile-time tunables for the dispatch queue tooling
//
// Purpose:
//   - Seeds, benchmark sizes, snapshot format version and journal defaults.
//
// Notes:
//   - The number of priority levels lives in dispatchq.Levels, next to the mask
//     it sizes. Everything here is tooling configuration.
//
// ⚠️ No runtime logic here; all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ─────────────────────────────── Generator ─────────────────────────────────

const (
	// DefaultSeed is the default generator seed for bench and replay.
	// Runs with the same seed replay exactly.
	DefaultSeed = 210820016061997
)

// ─────────────────────────────── Benchmarks ────────────────────────────────

const (
	// BenchMinN and BenchMaxN bound the element counts swept by `pdq bench`.
	// 1e3 fits in L1/L2; 1e6 spills well past L3 and exercises arena growth.
	BenchMinN = 1_000
	BenchMaxN = 1_000_000

	// BenchMultiplier is the step between consecutive sweep sizes.
	BenchMultiplier = 10

	// DefaultBucketCapacity pre-sizes each bucket arena in CLI workloads.
	DefaultBucketCapacity = 64
)

// ─────────────────────────────── Persistence ───────────────────────────────

const (
	// SnapshotVersion is written into every encoded snapshot document.
	// Bump when the document layout changes.
	SnapshotVersion = 1

	// DefaultJournalPath is the sqlite file used when --journal is omitted.
	DefaultJournalPath = "pdq_journal.db"

	// JournalBusyTimeoutMs is passed to sqlite as _busy_timeout.
	JournalBusyTimeoutMs = 100
)
