package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"layerplane/internal/store"

	"github.com/lib/pq"
)

// FindWorkspacesByName returns every workspace row carrying the name.
func (s *Store) FindWorkspacesByName(ctx context.Context, name string) ([]store.Workspace, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM workspaces WHERE name = $1 ORDER BY id`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []store.Workspace
	for rows.Next() {
		var ws store.Workspace
		if err := rows.Scan(&ws.ID, &ws.Name); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, rows.Err()
}

const publishColumns = `p.id, p.workspace_id, w.name, p.name, p.status, p.trigger_interval, p.job_id, p.last_publish_time`

func scanPublish(row interface{ Scan(...any) error }) (*store.Publish, error) {
	var p store.Publish
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.WorkspaceName, &p.Name, &p.Status, &p.Interval, &p.JobID, &p.LastPublishTime)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPublish looks up a publish by exact name within the given workspaces.
func (s *Store) FindPublish(ctx context.Context, workspaceIDs []int64, name string) (*store.Publish, error) {
	query := `
		SELECT ` + publishColumns + `
		FROM publishes p
		JOIN workspaces w ON p.workspace_id = w.id
		WHERE p.workspace_id = ANY($1) AND p.name = $2
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(workspaceIDs), name)
	if err != nil {
		return nil, err
	}
	return single(rows, scanPublish)
}

// GetPublishByName looks up a publish by name across all workspaces.
func (s *Store) GetPublishByName(ctx context.Context, name string) (*store.Publish, error) {
	query := `
		SELECT ` + publishColumns + `
		FROM publishes p
		JOIN workspaces w ON p.workspace_id = w.id
		WHERE p.name = $1
	`
	rows, err := s.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, err
	}
	return single(rows, scanPublish)
}

// SetPublishJob records the newest job of a publish.
func (s *Store) SetPublishJob(ctx context.Context, tx store.DBTransaction, publishID, jobID int64) error {
	executor := s.getExecutor(tx)
	res, err := executor.ExecContext(ctx, `UPDATE publishes SET job_id = $1 WHERE id = $2`, jobID, publishID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// FindLiveLayer looks up a live layer whose name or table matches.
func (s *Store) FindLiveLayer(ctx context.Context, workspaceIDs []int64, nameOrTable string) (*store.LiveLayer, error) {
	query := `
		SELECT l.id, d.workspace_id, w.name, l.name, l."table", l.status, l.last_publish_time
		FROM live_layers l
		JOIN datasources d ON l.datasource_id = d.id
		JOIN workspaces w ON d.workspace_id = w.id
		WHERE d.workspace_id = ANY($1) AND (l.name = $2 OR l."table" = $2)
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(workspaceIDs), nameOrTable)
	if err != nil {
		return nil, err
	}
	return single(rows, func(row interface{ Scan(...any) error }) (*store.LiveLayer, error) {
		var l store.LiveLayer
		if err := row.Scan(&l.ID, &l.WorkspaceID, &l.WorkspaceName, &l.Name, &l.Table, &l.Status, &l.LastPublishTime); err != nil {
			return nil, err
		}
		return &l, nil
	})
}

// FindLiveSqlViewLayer looks up a live sqlview layer by exact name.
func (s *Store) FindLiveSqlViewLayer(ctx context.Context, workspaceIDs []int64, name string) (*store.LiveSqlViewLayer, error) {
	query := `
		SELECT l.id, d.workspace_id, w.name, l.name, l.status, l.last_publish_time
		FROM live_sqlview_layers l
		JOIN datasources d ON l.datasource_id = d.id
		JOIN workspaces w ON d.workspace_id = w.id
		WHERE d.workspace_id = ANY($1) AND l.name = $2
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(workspaceIDs), name)
	if err != nil {
		return nil, err
	}
	return single(rows, func(row interface{ Scan(...any) error }) (*store.LiveSqlViewLayer, error) {
		var l store.LiveSqlViewLayer
		if err := row.Scan(&l.ID, &l.WorkspaceID, &l.WorkspaceName, &l.Name, &l.Status, &l.LastPublishTime); err != nil {
			return nil, err
		}
		return &l, nil
	})
}

// FindWmsLayer looks up a wms layer by kmi name under the workspaces' wms servers.
func (s *Store) FindWmsLayer(ctx context.Context, workspaceIDs []int64, kmiName string) (*store.WmsLayer, error) {
	query := `
		SELECT l.id, l.server_id, srv.workspace_id, w.name, l.name, l.kmi_name, l.status, l.last_publish_time
		FROM wms_layers l
		JOIN wms_servers srv ON l.server_id = srv.id
		JOIN workspaces w ON srv.workspace_id = w.id
		WHERE srv.workspace_id = ANY($1) AND l.kmi_name = $2
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(workspaceIDs), kmiName)
	if err != nil {
		return nil, err
	}
	return single(rows, func(row interface{ Scan(...any) error }) (*store.WmsLayer, error) {
		var l store.WmsLayer
		if err := row.Scan(&l.ID, &l.ServerID, &l.WorkspaceID, &l.WorkspaceName, &l.Name, &l.KmiName, &l.Status, &l.LastPublishTime); err != nil {
			return nil, err
		}
		return &l, nil
	})
}

// UpdateResourceStatus writes the new status and publish time of a resource.
// No other column is touched so concurrent writers of the row are preserved.
func (s *Store) UpdateResourceStatus(ctx context.Context, table store.ResourceTable, id int64, status string, publishTime time.Time) error {
	switch table {
	case store.TableLiveLayers, store.TableLiveSqlViewLayers, store.TableWmsLayers, store.TablePublishes:
	default:
		return fmt.Errorf("unknown resource table %q", table)
	}

	query := fmt.Sprintf(`UPDATE %s SET status = $1, last_publish_time = $2 WHERE id = $3`, table)
	res, err := s.db.ExecContext(ctx, query, status, publishTime, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// single scans exactly one row, reporting ErrNotFound or ErrMultipleFound otherwise.
func single[T any](rows *sql.Rows, scan func(interface{ Scan(...any) error }) (*T, error)) (*T, error) {
	defer rows.Close()

	var found *T
	for rows.Next() {
		if found != nil {
			return nil, store.ErrMultipleFound
		}
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		found = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// notFound maps sql.ErrNoRows to store.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
