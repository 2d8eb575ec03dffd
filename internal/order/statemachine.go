package order

import "github.com/vasiliy-maslov/quickorder/internal/model"

// ladder is the only path advance may take. paid is reachable through
// SetStatus alone.
var ladder = map[model.OrderStatus]model.OrderStatus{
	model.StatusPaymentVerification: model.StatusPending,
	model.StatusPending:             model.StatusPreparing,
	model.StatusPreparing:           model.StatusReady,
	model.StatusReady:               model.StatusServed,
}

// Next returns the status that follows s on the kitchen ladder. For served,
// paid and unknown statuses it returns s unchanged and false.
func Next(s model.OrderStatus) (model.OrderStatus, bool) {
	next, ok := ladder[s]
	if !ok {
		return s, false
	}
	return next, true
}

// InitialStatus picks the first status of a new order. Instapay transfers
// are checked by staff before the kitchen starts.
func InitialStatus(pm model.PaymentMethod) model.OrderStatus {
	if pm == model.PaymentInstapay {
		return model.StatusPaymentVerification
	}
	return model.StatusPending
}
