package models

import "testing"

func TestApplicationTransitionRules(t *testing.T) {
	cases := []struct {
		status      AppStatus
		startReview bool
		approve     bool
		reject      bool
		update      bool
	}{
		{AppPending, true, true, true, true},
		{AppUnderReview, false, true, true, false},
		{AppApproved, false, false, true, false},
		{AppRejected, false, false, false, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			if got := tc.status.CanStartReview(); got != tc.startReview {
				t.Errorf("CanStartReview = %v, want %v", got, tc.startReview)
			}
			if got := tc.status.CanApprove(); got != tc.approve {
				t.Errorf("CanApprove = %v, want %v", got, tc.approve)
			}
			if got := tc.status.CanReject(); got != tc.reject {
				t.Errorf("CanReject = %v, want %v", got, tc.reject)
			}
			if got := tc.status.CanUpdate(); got != tc.update {
				t.Errorf("CanUpdate = %v, want %v", got, tc.update)
			}
		})
	}
}

func TestDocumentTerminalStates(t *testing.T) {
	// verified and rejected are mutually exclusive terminal states: neither
	// deletable by the owner nor reviewable again
	for _, s := range []DocStatus{DocVerified, DocRejected} {
		if s.Deletable() {
			t.Errorf("%s document must not be deletable", s)
		}
		if s.Reviewable() {
			t.Errorf("%s document must not be reviewable again", s)
		}
	}
	if !DocPending.Deletable() || !DocPending.Reviewable() {
		t.Error("pending documents are both deletable and reviewable")
	}
}

func TestDocumentByType(t *testing.T) {
	app := Application{Documents: []Document{
		{Type: "transcript", Status: DocPending},
		{Type: "id-card", Status: DocVerified},
	}}

	doc, ok := app.DocumentByType("id-card")
	if !ok || doc.Status != DocVerified {
		t.Errorf("DocumentByType(id-card) = (%+v, %v)", doc, ok)
	}
	if _, ok := app.DocumentByType("essay"); ok {
		t.Error("missing type should report not found")
	}
}

func TestLevelAndStatusValidation(t *testing.T) {
	for _, l := range []MemberLevel{LevelBronze, LevelSilver, LevelGold, LevelPlatinum} {
		if !l.Valid() {
			t.Errorf("%s should be valid", l)
		}
	}
	if MemberLevel("diamond").Valid() {
		t.Error("unknown level should be invalid")
	}
	for _, s := range []MemberStatus{MemberActive, MemberInactive, MemberSuspended} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if MemberStatus("banned").Valid() {
		t.Error("unknown status should be invalid")
	}
}
