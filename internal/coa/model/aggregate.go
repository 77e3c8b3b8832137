package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an owner status change is not allowed from the current state.
var ErrInvalidTransition = errors.New("invalid owner status transition")

// DocumentStatus derives the display status of a single document.
func DocumentStatus(doc Request) Status {
	switch {
	case doc.OwnerStatus == OwnerStatusApproved:
		return StatusCompleted
	case doc.OwnerStatus == OwnerStatusRejected:
		return StatusFailed
	case doc.RequestStatus.Failed():
		return StatusFailed
	case doc.RequestStatus == RequestStatusQueued:
		return StatusPending
	}
	return StatusInProgress
}

// AggregateStatus derives an envelope's status from its documents.
// An envelope without documents is judged on its own processing state.
func AggregateStatus(parent Request, children []Request) Status {
	if len(children) == 0 {
		return DocumentStatus(Request{RequestStatus: parent.RequestStatus})
	}
	completed, pending := 0, 0
	for _, c := range children {
		switch DocumentStatus(c) {
		case StatusFailed:
			return StatusFailed
		case StatusCompleted:
			completed++
		case StatusPending:
			pending++
		}
	}
	switch len(children) {
	case completed:
		return StatusCompleted
	case pending:
		return StatusPending
	}
	return StatusInProgress
}

// AggregateOwnerStatus derives an envelope's owner status from its documents.
func AggregateOwnerStatus(children []Request) OwnerStatus {
	if len(children) == 0 {
		return OwnerStatusUnassigned
	}
	counts := make(map[OwnerStatus]int, 5)
	for _, c := range children {
		counts[c.OwnerStatus]++
	}
	switch {
	case counts[OwnerStatusUnassigned] == len(children):
		return OwnerStatusUnassigned
	case counts[OwnerStatusApproved] == len(children):
		return OwnerStatusApproved
	case counts[OwnerStatusRejected] > 0:
		return OwnerStatusRejected
	case counts[OwnerStatusRetried] > 0:
		return OwnerStatusRetried
	}
	return OwnerStatusAssigned
}

// AggregateRequestStatus summarises the processing state of an envelope's documents:
// any failure is error, all queued is queued, all generated is template_generated,
// anything else is parsed.
func AggregateRequestStatus(children []Request) RequestStatus {
	queued, generated := 0, 0
	for _, c := range children {
		switch {
		case c.RequestStatus.Failed():
			return RequestStatusError
		case c.RequestStatus == RequestStatusQueued:
			queued++
		case c.RequestStatus == RequestStatusTemplateGenerated:
			generated++
		}
	}
	switch len(children) {
	case queued:
		return RequestStatusQueued
	case generated:
		return RequestStatusTemplateGenerated
	}
	return RequestStatusParsed
}

// Recompute refreshes the derived fields of parent from children.
// An envelope without documents keeps its own processing state.
func Recompute(parent *Request, children []Request) {
	if len(children) > 0 {
		parent.RequestStatus = AggregateRequestStatus(children)
	}
	parent.Status = AggregateStatus(*parent, children)
	parent.OwnerStatus = AggregateOwnerStatus(children)
}

// OwnerAction is a change to the approval assignment of a document.
type OwnerAction string

const (
	ActionAssign  OwnerAction = "assign"
	ActionApprove OwnerAction = "approve"
	ActionReject  OwnerAction = "reject"
	ActionRetry   OwnerAction = "retry"
)

var transitions = map[OwnerAction]struct {
	from []OwnerStatus
	to   OwnerStatus
}{
	ActionAssign:  {[]OwnerStatus{OwnerStatusUnassigned, OwnerStatusAssigned, OwnerStatusRetried}, OwnerStatusAssigned},
	ActionApprove: {[]OwnerStatus{OwnerStatusAssigned, OwnerStatusRetried}, OwnerStatusApproved},
	ActionReject:  {[]OwnerStatus{OwnerStatusAssigned, OwnerStatusRetried}, OwnerStatusRejected},
	ActionRetry:   {[]OwnerStatus{OwnerStatusRejected}, OwnerStatusRetried},
}

// NextOwnerStatus returns the owner status a document moves to under action.
func NextOwnerStatus(current OwnerStatus, action OwnerAction) (OwnerStatus, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	for _, from := range t.from {
		if from == current {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("%w: cannot %s a document that is %s", ErrInvalidTransition, action, current)
}

// BuildHierarchy groups flat requests into envelopes with their documents.
// Envelopes keep input order; documents keep input order within an envelope.
// Documents whose parent is absent are dropped.
func BuildHierarchy(flat []Request) []Request {
	children := make(map[string][]Request)
	for _, r := range flat {
		if r.IsChild() {
			children[*r.ParentID] = append(children[*r.ParentID], r)
		}
	}
	parents := make([]Request, 0, len(flat)-countChildren(children))
	for _, r := range flat {
		if r.IsChild() {
			continue
		}
		r.Children = children[r.ID]
		parents = append(parents, r)
	}
	return parents
}

func countChildren(children map[string][]Request) int {
	n := 0
	for _, c := range children {
		n += len(c)
	}
	return n
}
