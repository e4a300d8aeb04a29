package statemachine

import (
	"testing"

	"food-delivery-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		actor   string
		wantErr bool
	}{
		{"restaurant accepts placed order", models.StatusPlaced, models.StatusAccepted, ActorRestaurant, false},
		{"restaurant starts preparing", models.StatusAccepted, models.StatusPreparing, ActorRestaurant, false},
		{"restaurant marks ready", models.StatusPreparing, models.StatusReady, ActorRestaurant, false},
		{"delivery picks up ready order", models.StatusReady, models.StatusPickedUp, ActorDelivery, false},
		{"delivery delivers picked up order", models.StatusPickedUp, models.StatusDelivered, ActorDelivery, false},
		{"scheduler promotes pending order", models.StatusPending, models.StatusPlaced, ActorSystem, false},
		{"customer cancels placed order", models.StatusPlaced, models.StatusCancelled, ActorCustomer, false},
		{"customer cancels accepted order", models.StatusAccepted, models.StatusCancelled, ActorCustomer, false},
		{"restaurant cancels ready order", models.StatusReady, models.StatusCancelled, ActorRestaurant, false},

		// kitchen states are restaurant-only
		{"delivery cannot set preparing", models.StatusAccepted, models.StatusPreparing, ActorDelivery, true},
		{"delivery cannot set ready", models.StatusPreparing, models.StatusReady, ActorDelivery, true},
		{"delivery cannot accept", models.StatusPlaced, models.StatusAccepted, ActorDelivery, true},
		// hand-off states are delivery-only
		{"restaurant cannot pick up", models.StatusReady, models.StatusPickedUp, ActorRestaurant, true},
		{"restaurant cannot deliver", models.StatusPickedUp, models.StatusDelivered, ActorRestaurant, true},
		// no regressions
		{"delivered cannot go back to preparing", models.StatusDelivered, models.StatusPreparing, ActorRestaurant, true},
		{"ready cannot go back to placed", models.StatusReady, models.StatusPlaced, ActorRestaurant, true},
		{"picked up cannot be cancelled", models.StatusPickedUp, models.StatusCancelled, ActorRestaurant, true},
		// customer window closes once food is being made
		{"customer cannot cancel preparing order", models.StatusPreparing, models.StatusCancelled, ActorCustomer, true},
		// no skipping states
		{"placed cannot jump to ready", models.StatusPlaced, models.StatusReady, ActorRestaurant, true},
		{"placed cannot jump to delivered", models.StatusPlaced, models.StatusDelivered, ActorDelivery, true},
		// terminal states are dead ends
		{"cancelled is terminal", models.StatusCancelled, models.StatusPlaced, ActorRestaurant, true},
		{"delivered is terminal", models.StatusDelivered, models.StatusCancelled, ActorCustomer, true},
		// pending is invisible to non-system actors
		{"restaurant cannot promote pending", models.StatusPending, models.StatusPlaced, ActorRestaurant, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.actor)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusOnlyMovesForward(t *testing.T) {
	// order of the happy path; an edge may never point backwards
	rank := map[models.OrderStatus]int{
		models.StatusPending:   0,
		models.StatusPlaced:    1,
		models.StatusAccepted:  2,
		models.StatusPreparing: 3,
		models.StatusReady:     4,
		models.StatusPickedUp:  5,
		models.StatusDelivered: 6,
		models.StatusCancelled: 7,
	}
	for _, tr := range GetAllTransitions() {
		require.Greater(t, rank[tr.To], rank[tr.From],
			"transition %s -> %s goes backwards", tr.From, tr.To)
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusDelivered))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.Empty(t, ValidTransitionsFrom(models.StatusDelivered))
	assert.Empty(t, ValidTransitionsFrom(models.StatusCancelled))
	assert.False(t, IsTerminal(models.StatusReady))
}

func TestValidTransitionsFrom(t *testing.T) {
	nexts := ValidTransitionsFrom(models.StatusPlaced)
	assert.ElementsMatch(t, []models.OrderStatus{models.StatusAccepted, models.StatusCancelled}, nexts)

	nexts = ValidTransitionsFrom(models.StatusReady)
	assert.ElementsMatch(t, []models.OrderStatus{models.StatusPickedUp, models.StatusCancelled}, nexts)
}
