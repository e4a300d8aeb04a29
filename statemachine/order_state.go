package statemachine

import (
	"errors"

	"food-delivery-backend/models"
)

// Actor names accepted by the state machine
const (
	ActorCustomer   = "customer"
	ActorRestaurant = "restaurant"
	ActorDelivery   = "delivery"
	ActorSystem     = "system" // scheduler promoting pending scheduled orders
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// validTransitions is the authoritative state machine definition.
// Status only ever moves forward along these edges; nothing regresses
// except via an explicit CANCELLED.
var validTransitions = []Transition{
	// Scheduler promotes a parked scheduled order into the live flow
	{From: models.StatusPending, To: models.StatusPlaced, Actor: ActorSystem},
	// Restaurant drives the kitchen states
	{From: models.StatusPlaced, To: models.StatusAccepted, Actor: ActorRestaurant},
	{From: models.StatusAccepted, To: models.StatusPreparing, Actor: ActorRestaurant},
	{From: models.StatusPreparing, To: models.StatusReady, Actor: ActorRestaurant},
	// Delivery partner drives the hand-off states; kitchen states are
	// restaurant-only so a rider can never flip an order to PREPARING
	{From: models.StatusReady, To: models.StatusPickedUp, Actor: ActorDelivery},
	{From: models.StatusPickedUp, To: models.StatusDelivered, Actor: ActorDelivery},
	// Restaurant can cancel anything not yet picked up
	{From: models.StatusPlaced, To: models.StatusCancelled, Actor: ActorRestaurant},
	{From: models.StatusAccepted, To: models.StatusCancelled, Actor: ActorRestaurant},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: ActorRestaurant},
	{From: models.StatusReady, To: models.StatusCancelled, Actor: ActorRestaurant},
	// Customer can only cancel before food is being made
	{From: models.StatusPlaced, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusAccepted, To: models.StatusCancelled, Actor: ActorCustomer},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// IsTerminal reports whether no further transitions can leave the state
func IsTerminal(status models.OrderStatus) bool {
	return status == models.StatusDelivered || status == models.StatusCancelled
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor string) error {
	key := transitionKey{From: from, To: to, Actor: actor}
	if transitionMap[key] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for actor '" + actor + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
