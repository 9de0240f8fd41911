package test

import (
	"sync"

	"github.com/B3hnamR/viranumpro/internal/domain/model"
)

// EnrollerStub records orders handed over for background tracking.
type EnrollerStub struct {
	mu     sync.Mutex
	Orders []*model.Order
}

// Enroll stores the order.
func (s *EnrollerStub) Enroll(order *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Orders = append(s.Orders, order)
}

// Enrolled returns the number of recorded enrollments.
func (s *EnrollerStub) Enrolled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Orders)
}

// NotifierStub records dispatched notifications.
type NotifierStub struct {
	mu          sync.Mutex
	Transitions []TransitionRecord
	Degraded    []string
}

// TransitionRecord captures one NotifyTransition call.
type TransitionRecord struct {
	OrderID string
	From    model.OrderStatus
	To      model.OrderStatus
	Codes   []model.SMS
}

// NotifyTransition stores the transition.
func (s *NotifierStub) NotifyTransition(order *model.Order, from, to model.OrderStatus, codes []model.SMS) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transitions = append(s.Transitions, TransitionRecord{OrderID: order.ID, From: from, To: to, Codes: codes})
}

// NotifyDegraded stores the degraded order id.
func (s *NotifierStub) NotifyDegraded(order *model.Order, failures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Degraded = append(s.Degraded, order.ID)
}

// TransitionCount returns the number of recorded transitions.
func (s *NotifierStub) TransitionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Transitions)
}

// DegradedCount returns the number of recorded degraded notices.
func (s *NotifierStub) DegradedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Degraded)
}
