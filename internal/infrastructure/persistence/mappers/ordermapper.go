package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/infrastructure/persistence/models"
)

func OrderToModel(o *order.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:                o.ID(),
		Total:             o.Total(),
		Currency:          o.Currency(),
		Status:            o.Status().String(),
		BillingEmail:      o.BillingEmail(),
		CustomerUserAgent: o.CustomerUserAgent(),
		PaymentMethod:     o.PaymentMethod(),
		StockReduced:      o.StockReduced(),
		PaidAt:            o.PaidAt(),
		Version:           o.Version(),
		CreatedAt:         o.CreatedAt(),
		UpdatedAt:         o.UpdatedAt(),
	}
}

func OrderToDomain(model *models.OrderModel) (*order.Order, error) {
	o, err := order.ReconstructOrder(order.ReconstructParams{
		ID:                model.ID,
		Total:             model.Total,
		Currency:          model.Currency,
		Status:            order.Status(model.Status),
		BillingEmail:      model.BillingEmail,
		CustomerUserAgent: model.CustomerUserAgent,
		PaymentMethod:     model.PaymentMethod,
		StockReduced:      model.StockReduced,
		PaidAt:            model.PaidAt,
		Version:           model.Version,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct order %d: %w", model.ID, err)
	}
	return o, nil
}

func OrdersToDomain(list []models.OrderModel) ([]*order.Order, error) {
	out := make([]*order.Order, 0, len(list))
	for i := range list {
		o, err := OrderToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func RefundToModel(r *order.Refund) *models.RefundModel {
	return &models.RefundModel{
		ID:          r.ID(),
		OrderID:     r.OrderID(),
		Amount:      r.Amount(),
		Reason:      r.Reason(),
		CreatedAt:   r.CreatedAt(),
		ConfirmedAt: r.ConfirmedAt(),
	}
}

func RefundToDomain(model *models.RefundModel) *order.Refund {
	return order.ReconstructRefund(model.ID, model.OrderID, model.Amount, model.Reason, model.CreatedAt, model.ConfirmedAt)
}

func NoteToDomain(model *models.NoteModel) *order.Note {
	return &order.Note{
		ID:        model.ID,
		OrderID:   model.OrderID,
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}
}

func CallbackEventToModel(e *order.CallbackEvent) (*models.CallbackEventModel, error) {
	params, err := json.Marshal(e.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode callback params: %w", err)
	}

	return &models.CallbackEventModel{
		ID:         e.ID,
		Kind:       string(e.Kind),
		OrderID:    e.OrderID,
		RefundID:   e.RefundID,
		RequestID:  e.RequestID,
		Outcome:    e.Outcome,
		Params:     params,
		ReceivedAt: e.ReceivedAt,
	}, nil
}
