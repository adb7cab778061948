package models

import "testing"

func TestApprovalStateRoundTrip(t *testing.T) {
	var r Report

	if _, ok := r.ApprovalState(); ok {
		t.Fatal("empty approvals parsed as valid state")
	}

	if err := r.SetApprovalState(NewApprovalState()); err != nil {
		t.Fatalf("set state: %v", err)
	}
	state, ok := r.ApprovalState()
	if !ok {
		t.Fatal("state not parseable after set")
	}
	if state.Stage != 1 || len(state.Approvers) != 2 {
		t.Fatalf("template state = %+v", state)
	}
	if !r.IsAtStage(1) || r.IsAtStage(2) {
		t.Fatal("IsAtStage disagrees with stage 1")
	}

	if err := r.SetApprovalState(nil); err != nil {
		t.Fatalf("clear state: %v", err)
	}
	if r.ApprovalsJSON != nil {
		t.Fatal("nil state did not clear approvals")
	}
}

func TestApprovalStateFailsClosed(t *testing.T) {
	bad := "{definitely not json"
	r := Report{ApprovalsJSON: &bad}

	if _, ok := r.ApprovalState(); ok {
		t.Fatal("malformed approvals parsed as valid state")
	}
	if r.IsAtStage(1) {
		t.Fatal("malformed approvals counted as at-stage")
	}
}
