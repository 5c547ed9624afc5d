package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sensorline/levelquote/internal/configurator"
)

type quoteListItem struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"createdAt"`
	Title       string `json:"title"`
	Family      string `json:"family"`
	ModelNumber string `json:"modelNumber"`
	Price       string `json:"price"`
}

// insertQuote persists a finalized configuration as the quote-storage
// collaborator. It stores the export record as handed over; price and
// validity are never re-derived here.
func (s *Server) insertQuote(family, title, notes string, finalized configurator.Finalized) (string, error) {
	selections, err := json.Marshal(finalized.SelectedOptions)
	if err != nil {
		return "", fmt.Errorf("encode quote selections: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(`
		INSERT INTO quotes (id, title, notes, family, model_number, description, selections_json, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, title, notes, family, finalized.ModelNumber, finalized.Description,
		string(selections), finalized.Price.String())
	if err != nil {
		return "", fmt.Errorf("insert quote: %w", err)
	}

	return id, nil
}

func (s *Server) listQuotes(query string) ([]quoteListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, created_at, COALESCE(title, ''), family, model_number, price
		FROM quotes
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ? OR model_number LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]quoteListItem, 0)
	for rows.Next() {
		var item quoteListItem
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Title, &item.Family, &item.ModelNumber, &item.Price); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

func (s *Server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.listQuotes(query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}
