package symex

import "fmt"

// ArraysUFMode controls when the default solver backend represents
// arrays with uninterpreted functions instead of bounded bit-vector
// arrays.
type ArraysUFMode int

const (
	// ArraysUFAuto lets the backend decide per-array.
	ArraysUFAuto ArraysUFMode = iota
	// ArraysUFNever never uses uninterpreted functions for arrays.
	ArraysUFNever
	// ArraysUFAlways always uses uninterpreted functions for arrays.
	ArraysUFAlways
)

// SMT2Solver identifies which SMT2-flavored solver's quirks the SMT2
// backend should target. It has no effect unless SMT2 is set.
type SMT2Solver int

// SMT2 solver variants, matching the taxonomy named in the solver
// factory's configuration surface.
const (
	SMT2Generic SMT2Solver = iota
	SMT2Boolector
	SMT2CProverSMT2
	SMT2MathSAT
	SMT2CVC3
	SMT2CVC4
	SMT2Yices
	SMT2Z3
)

// Options configures a single run of the interpreter and the solver
// factory it hands off to. There is no flag-parsing layer in this
// package; callers populate Options programmatically (e.g. from their
// own CLI or test harness) and pass it to NewInterpreter.
type Options struct {
	// Depth bounds the total number of interpreter steps taken before
	// execution is forcibly stopped. Zero means unbounded.
	Depth int

	// Paths selects path-exploration mode (push the not-taken GOTO
	// successor onto path storage and pause) instead of the default
	// eager-merge mode (clone, conjoin, and continue both branches).
	Paths bool

	// AllowPointerUnsoundness lets the expression cleaner fall back to a
	// failed_object symbol silently when a dereference's ValueSet is
	// empty. Without it, the same fallback is preceded by an ASSERT false
	// verification condition recording the unresolved dereference.
	AllowPointerUnsoundness bool

	// Propagation enables forward constant propagation: ASSIGN steps
	// whose RHS is a compile-time constant are recorded in the state's
	// propagation map and substituted at later reads, rather than
	// re-read from the equation.
	Propagation bool

	// SelfLoopsToAssumptions rewrites a `while(true) {}`-shaped
	// self-loop (a GOTO whose only target is itself) into `assume(false)`
	// instead of unwinding it.
	SelfLoopsToAssumptions bool

	// Simplify enables expression simplification beyond the
	// constant-folding every expression constructor already performs on
	// construction (e.g. simplifying guards after a merge).
	Simplify bool

	// UnwindingAssertions injects `assert(false)` instead of
	// `assume(false)` when a loop's unwind bound is exceeded, so that
	// the verification result reflects incomplete unwinding rather than
	// silently cutting the path.
	UnwindingAssertions bool

	// PartialLoops cuts a backwards GOTO's back-edge silently once its
	// bound is exceeded, without injecting any ASSUME or ASSERT step.
	// Mutually exclusive in effect with UnwindingAssertions; the
	// interpreter checks PartialLoops first.
	PartialLoops bool

	// UnwindBound is the default per-loop iteration bound used when a
	// loop has no entry in UnwindBounds. Zero means unbounded.
	UnwindBound int

	// UnwindBounds overrides UnwindBound for specific loops.
	UnwindBounds map[LoopID]int

	// RecursionBound bounds the number of active recursive invocations
	// of any single function. Zero means unbounded.
	RecursionBound int

	// DebugLevel controls the verbosity of the package logger, 0 being
	// silent.
	DebugLevel int

	// ValidateSSAEquation runs Equation.Validate after every step,
	// aborting with a ValidationError on the first violation. Expensive;
	// intended for engine development and test harnesses.
	ValidateSSAEquation bool

	// --- Solver factory selection, mirroring get_solver()'s dispatch ---

	// DIMACS requests emission of the equation as a CNF file rather
	// than solving it, mutually exclusive with the other backends.
	DIMACS bool
	// Refine requests the bit-vector refinement backend.
	Refine bool
	// RefineStrings requests the string-refinement backend (adds string
	// library theory to bit-vector refinement).
	RefineStrings bool
	// SMT2 requests SMT-LIB 2 output instead of a built-in decision
	// procedure.
	SMT2 bool
	// SMT2SolverVariant selects which solver's SMT2 dialect quirks to
	// target; only consulted when SMT2 is set.
	SMT2SolverVariant SMT2Solver

	// Outfile names the file DIMACS/SMT2 output is written to. The
	// sentinel value "-" means stdout. Empty means: for DIMACS, an
	// error (a filename is required); for SMT2 with a non-generic
	// solver variant, use that solver directly in-process instead of
	// emitting text.
	Outfile string

	// Beautify requests solver-side model minimization. Not supported
	// by the DIMACS, refinement, or SMT2 backends.
	Beautify bool
	// AllProperties requests incremental, all-properties solving. Not
	// supported by the DIMACS backend.
	AllProperties bool
	// Cover requests coverage-driven incremental solving. Not supported
	// by the DIMACS backend.
	Cover bool
	// IncrementalCheck requests incremental solving. Not supported by
	// the DIMACS backend.
	IncrementalCheck bool

	// SATPreprocessor enables the underlying SAT solver's simplifying
	// preprocessor. Disabling it is required when Beautify is set.
	SATPreprocessor bool

	// ArraysUF controls array representation in the default backend.
	ArraysUF ArraysUFMode

	// MaxNodeRefinement bounds the number of refinement rounds the
	// bit-vector/string refinement backends will run. Zero means the
	// backend's built-in default.
	MaxNodeRefinement uint
	// RefineArrays enables lazy array axiom refinement.
	RefineArrays bool
	// RefineArithmetic enables lazy arithmetic axiom refinement.
	RefineArithmetic bool

	// FPA requests the floating-point theory (as opposed to a bit-vector
	// encoding of floating-point operations) in the SMT2 backend.
	FPA bool

	// SolverTimeLimit bounds solving time in seconds. Zero/negative
	// means unbounded.
	SolverTimeLimit int

	// ValueSets and Dirty are injected analyses the interpreter consults
	// but never computes. Nil defaults to conservative stand-ins (see
	// services.go) suitable only for programs with no escaping pointers.
	ValueSets ValueSet
	Dirty     DirtyVariables
}

// ConfigError reports an invalid combination of Options, mirroring
// CBMC's invalid_command_line_argument_exceptiont: these are detected
// before any symbolic execution happens and the caller should abort
// immediately rather than attempt a partial run.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Option, e.Reason)
}

// Validate checks Options for self-contradictory combinations, mirroring
// solver_factoryt's no_beautification/no_incremental_check guards. It is
// called by NewInterpreter; callers do not need to call it directly.
func (o *Options) Validate() error {
	backends := 0
	if o.DIMACS {
		backends++
	}
	if o.Refine {
		backends++
	}
	if o.RefineStrings {
		backends++
	}
	if o.SMT2 {
		backends++
	}
	if backends > 1 {
		return &ConfigError{Option: "solver backend", Reason: "at most one of dimacs, refine, refine-strings, smt2 may be set"}
	}

	if o.DIMACS || o.Refine || o.RefineStrings || o.SMT2 {
		if o.Beautify {
			return &ConfigError{Option: "beautify", Reason: "the chosen solver does not support beautification"}
		}
	}
	if o.DIMACS {
		if o.AllProperties {
			return &ConfigError{Option: "all-properties", Reason: "the chosen solver does not support incremental solving"}
		}
		if o.Cover {
			return &ConfigError{Option: "cover", Reason: "the chosen solver does not support incremental solving"}
		}
		if o.IncrementalCheck {
			return &ConfigError{Option: "incremental-check", Reason: "the chosen solver does not support incremental solving"}
		}
		if o.Outfile == "" {
			return &ConfigError{Option: "outfile", Reason: "dimacs output requires a filename"}
		}
	}
	if o.SMT2 && o.Outfile == "" && o.SMT2SolverVariant == SMT2Generic {
		return &ConfigError{Option: "outfile", Reason: "required filename not provided"}
	}
	if o.UnwindingAssertions && o.PartialLoops {
		return &ConfigError{Option: "partial-loops", Reason: "partial-loops and unwinding-assertions are mutually exclusive"}
	}
	return nil
}

func (o *Options) valueSets() ValueSet {
	if o.ValueSets != nil {
		return o.ValueSets
	}
	return emptyValueSet{}
}

func (o *Options) dirty() DirtyVariables {
	if o.Dirty != nil {
		return o.Dirty
	}
	return alwaysCleanDirtyVariables{}
}
