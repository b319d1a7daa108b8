// Package store is the persistence collaborator for the analytics engine.
// It fetches the two record streams and the configured category roster
// from Postgres; the engine itself never touches the database.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"almanac/internal/metrics"
	"almanac/pkg/database"
	"almanac/pkg/logging"
	"almanac/pkg/models"
)

// Store wraps the planner database
type Store struct {
	db             database.PostgresConn
	logger         logging.Logger
	serviceMetrics *metrics.Metrics
}

// New creates a store over an established connection
func New(db database.PostgresConn, logger logging.Logger, m *metrics.Metrics) *Store {
	return &Store{db: db, logger: logger, serviceMetrics: m}
}

func (s *Store) trackQuery(queryType string, err error) {
	if s.serviceMetrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.serviceMetrics.StoreQueries.WithLabelValues(queryType, status).Inc()
}

// ListContentItems fetches content items, optionally restricted by a window
// hint. The hint is an optimization only; callers still apply the engine's
// window filter for exact end-of-day semantics.
func (s *Store) ListContentItems(ctx context.Context, w models.Window) ([]models.ContentItem, error) {
	query := `
		SELECT id, ts, category, status, content_type, COALESCE(assignee_id, '') AS assignee_id
		FROM content_items`

	args := []interface{}{}
	if !w.Start.IsZero() {
		args = append(args, w.Start)
		query += fmt.Sprintf(" WHERE ts >= $%d", len(args))
	}
	if !w.End.IsZero() {
		clause := " WHERE"
		if len(args) > 0 {
			clause = " AND"
		}
		// end bound is inclusive for the whole end date
		args = append(args, w.End.AddDate(0, 0, 1))
		query += fmt.Sprintf("%s ts < $%d", clause, len(args))
	}
	query += " ORDER BY ts ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	s.trackQuery("content_items", err)
	if err != nil {
		return nil, fmt.Errorf("failed to query content items: %w", err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		var item models.ContentItem
		if err := rows.Scan(&item.ID, &item.Timestamp, &item.Category, &item.Status, &item.ContentType, &item.AssigneeID); err != nil {
			s.logger.WithError(err).Error("Failed to scan content item")
			continue
		}
		if !models.ValidStatus(item.Status) {
			s.logger.WithFields(logging.Fields{
				"item_id": item.ID,
				"status":  item.Status,
			}).Warn("Skipping content item with unknown lifecycle status")
			continue
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content items: %w", err)
	}
	return items, nil
}

// ListSnapshotRecords fetches the complete follower-snapshot history. The
// fill-forward reconstruction needs the full sparse series, so there is no
// windowed variant.
func (s *Store) ListSnapshotRecords(ctx context.Context) ([]models.SnapshotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, snapshot_date, values_by_category, total
		FROM follower_snapshots
		ORDER BY snapshot_date ASC`)
	s.trackQuery("follower_snapshots", err)
	if err != nil {
		return nil, fmt.Errorf("failed to query follower snapshots: %w", err)
	}
	defer rows.Close()

	var records []models.SnapshotRecord
	for rows.Next() {
		var rec models.SnapshotRecord
		var rawValues []byte
		if err := rows.Scan(&rec.ID, &rec.Date, &rawValues, &rec.Total); err != nil {
			s.logger.WithError(err).Error("Failed to scan follower snapshot")
			continue
		}
		if len(rawValues) > 0 {
			if err := json.Unmarshal(rawValues, &rec.ValuesByCategory); err != nil {
				s.logger.WithFields(logging.Fields{
					"snapshot_id": rec.ID,
					"error":       err,
				}).Error("Failed to decode snapshot values")
				continue
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate follower snapshots: %w", err)
	}
	return records, nil
}

// ListRosterCategories fetches the configured channel names in display
// order. Retired channels only ever appear in historical records, not here.
func (s *Store) ListRosterCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name
		FROM roster_categories
		ORDER BY position ASC, name ASC`)
	s.trackQuery("roster_categories", err)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			s.logger.WithError(err).Error("Failed to scan roster category")
			continue
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster categories: %w", err)
	}
	return names, nil
}

// ListRosterAssignees fetches the team roster entry IDs, used to resolve
// dangling assignee references during aggregation
func (s *Store) ListRosterAssignees(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id
		FROM roster_members
		ORDER BY id ASC`)
	s.trackQuery("roster_members", err)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			s.logger.WithError(err).Error("Failed to scan roster member")
			continue
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster members: %w", err)
	}
	return ids, nil
}
