package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
)

// ExportCSV dumps the full order log in the flat column layout the shop
// has always archived.
func (r *Repository) ExportCSV(ctx context.Context) ([]byte, error) {
	orders, err := r.allOrders(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"order_id", "username", "chat_id", "items",
		"name", "house", "street", "city", "postcode",
		"status", "date", "order_total", "currency",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, o := range orders {
		row := []string{
			o.ID,
			o.Username,
			fmt.Sprintf("%d", o.ChatID),
			o.Items,
			o.Address.Name,
			o.Address.House,
			o.Address.Street,
			o.Address.City,
			o.Address.Postcode,
			string(o.Status),
			o.CreatedAt.Format(timeLayout),
			o.Total.StringFixed(2),
			o.Currency,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
