package postgres

import (
	"context"

	"layerplane/internal/store"
)

// ListSyncStatuses returns the sync rows of a publish together with their
// slave server, newest deployed job first.
func (s *Store) ListSyncStatuses(ctx context.Context, publishID int64) ([]store.PublishSyncStatus, error) {
	query := `
		SELECT st.id, st.publish_id, st.deploied_job_id, st.deploy_time,
		       st.sync_job_id, st.sync_message, st.sync_time,
		       srv.id, srv.name, srv.last_poll_time, srv.last_sync_time
		FROM publish_sync_statuses st
		JOIN slave_servers srv ON st.slave_server_id = srv.id
		WHERE st.publish_id = $1
		ORDER BY st.deploied_job_id DESC NULLS LAST, st.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, publishID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []store.PublishSyncStatus
	for rows.Next() {
		var st store.PublishSyncStatus
		if err := rows.Scan(
			&st.ID, &st.PublishID, &st.DeployedJobID, &st.DeployTime,
			&st.SyncJobID, &st.SyncMessage, &st.SyncTime,
			&st.SlaveServer.ID, &st.SlaveServer.Name, &st.SlaveServer.LastPollTime, &st.SlaveServer.LastSyncTime,
		); err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}
