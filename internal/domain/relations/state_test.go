package relations

import "testing"

func TestPairStateOf(t *testing.T) {
	tests := []struct {
		name        string
		actorLikes  bool
		targetLikes bool
		matched     bool
		expected    PairState
	}{
		{name: "nothing recorded", expected: StateUnrelated},
		{name: "actor liked", actorLikes: true, expected: StateActorLiked},
		{name: "target liked", targetLikes: true, expected: StateTargetLiked},
		{name: "matched", matched: true, expected: StateMatched},
		{name: "match supersedes stale likes", actorLikes: true, targetLikes: true, matched: true, expected: StateMatched},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PairStateOf(tc.actorLikes, tc.targetLikes, tc.matched); got != tc.expected {
				t.Fatalf("unexpected state: got %s want %s", got, tc.expected)
			}
		})
	}
}

func TestApplyLike(t *testing.T) {
	tests := []struct {
		name            string
		state           PairState
		expectedState   PairState
		expectedOutcome Outcome
	}{
		{name: "unrelated records like", state: StateUnrelated, expectedState: StateActorLiked, expectedOutcome: OutcomeLikeRecorded},
		{name: "repeat like is a no-op", state: StateActorLiked, expectedState: StateActorLiked, expectedOutcome: OutcomeNone},
		{name: "reciprocal like matches", state: StateTargetLiked, expectedState: StateMatched, expectedOutcome: OutcomeMatchCreated},
		{name: "already matched is a no-op", state: StateMatched, expectedState: StateMatched, expectedOutcome: OutcomeNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, outcome := ApplyLike(tc.state)
			if next != tc.expectedState {
				t.Fatalf("unexpected next state: got %s want %s", next, tc.expectedState)
			}
			if outcome != tc.expectedOutcome {
				t.Fatalf("unexpected outcome: got %d want %d", outcome, tc.expectedOutcome)
			}
		})
	}
}
