package relations

import "fmt"

// PairState is the relationship state between an acting user and a target,
// read from the actor's point of view.
type PairState int

const (
	StateUnrelated PairState = iota
	// StateActorLiked: the actor already likes the target, not reciprocated.
	StateActorLiked
	// StateTargetLiked: the target likes the actor, the actor has not answered.
	StateTargetLiked
	StateMatched
)

func (s PairState) String() string {
	switch s {
	case StateUnrelated:
		return "unrelated"
	case StateActorLiked:
		return "actor_liked"
	case StateTargetLiked:
		return "target_liked"
	case StateMatched:
		return "matched"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Outcome is the effect a like transition requires from the caller.
type Outcome int

const (
	// OutcomeNone: no state change, nothing to write.
	OutcomeNone Outcome = iota
	// OutcomeLikeRecorded: record the actor's one-directional like.
	OutcomeLikeRecorded
	// OutcomeMatchCreated: create the match, clear both one-directional
	// likes, notify both parties.
	OutcomeMatchCreated
)

// PairStateOf derives the state from the persisted facts: whether the actor
// likes the target, the target likes the actor, and a match row exists.
// A match supersedes any leftover like rows.
func PairStateOf(actorLikes, targetLikes, matched bool) PairState {
	switch {
	case matched:
		return StateMatched
	case actorLikes:
		return StateActorLiked
	case targetLikes:
		return StateTargetLiked
	default:
		return StateUnrelated
	}
}

// ApplyLike is the transition table for "actor likes target". It is the only
// place relationship states change; callers execute the returned outcome
// inside a single transaction so both sides of the pair move together.
func ApplyLike(s PairState) (PairState, Outcome) {
	switch s {
	case StateUnrelated:
		return StateActorLiked, OutcomeLikeRecorded
	case StateActorLiked:
		// Liking twice is a no-op, not an error.
		return StateActorLiked, OutcomeNone
	case StateTargetLiked:
		return StateMatched, OutcomeMatchCreated
	case StateMatched:
		return StateMatched, OutcomeNone
	default:
		return s, OutcomeNone
	}
}
