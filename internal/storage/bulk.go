package storage

import "time"

// memberRows prepares group_members rows for a bulk insert, the first occurrence of a user wins
func memberRows(group int64, joinedAt time.Time, users ...int64) []memberRow {
	seen := make(map[int64]struct{}, len(users))
	rows := make([]memberRow, 0, len(users))
	for _, user := range users {
		if _, ok := seen[user]; ok {
			continue
		}
		seen[user] = struct{}{}
		rows = append(rows, memberRow{
			GroupID:  group,
			UserID:   user,
			JoinedAt: joinedAt,
		})
	}
	return rows
}
