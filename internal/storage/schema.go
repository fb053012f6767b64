package storage

import "context"

var sqliteSchema = []string{
	`create table if not exists users (
		id integer primary key autoincrement,
		first_name text not null,
		last_name text not null,
		email text unique not null,
		password text not null,
		is_online boolean not null default false,
		last_seen timestamp
	)`,
	`create table if not exists "groups" (
		id integer primary key autoincrement,
		name text not null,
		created_by integer not null references users(id),
		created_at timestamp not null
	)`,
	`create table if not exists messages (
		id integer primary key autoincrement,
		sender_id integer not null references users(id),
		receiver_id integer references users(id),
		group_id integer references "groups"(id),
		content text not null,
		timestamp timestamp not null,
		is_read boolean not null default false,
		check ((receiver_id is not null and group_id is null) or
		       (receiver_id is null and group_id is not null))
	)`,
	`create table if not exists group_members (
		group_id integer not null references "groups"(id),
		user_id integer not null references users(id),
		joined_at timestamp not null,
		primary key (group_id, user_id)
	)`,
	`create index if not exists messages_direct_idx on messages (sender_id, receiver_id, timestamp)`,
	`create index if not exists messages_group_idx on messages (group_id, timestamp)`,
	`create index if not exists group_members_user_idx on group_members (user_id)`,
}

var postgresSchema = []string{
	`create table if not exists users (
		id bigserial primary key,
		first_name text not null,
		last_name text not null,
		email text unique not null,
		password text not null,
		is_online boolean not null default false,
		last_seen timestamptz
	)`,
	`create table if not exists "groups" (
		id bigserial primary key,
		name text not null,
		created_by bigint not null references users(id),
		created_at timestamptz not null
	)`,
	`create table if not exists messages (
		id bigserial primary key,
		sender_id bigint not null references users(id),
		receiver_id bigint references users(id),
		group_id bigint references "groups"(id),
		content text not null,
		timestamp timestamptz not null,
		is_read boolean not null default false,
		constraint messages_target_check check (
			(receiver_id is not null and group_id is null) or
			(receiver_id is null and group_id is not null))
	)`,
	`create table if not exists group_members (
		group_id bigint not null references "groups"(id),
		user_id bigint not null references users(id),
		joined_at timestamptz not null,
		primary key (group_id, user_id)
	)`,
	`create index if not exists messages_direct_idx on messages (sender_id, receiver_id, timestamp)`,
	`create index if not exists messages_group_idx on messages (group_id, timestamp)`,
	`create index if not exists group_members_user_idx on group_members (user_id)`,
}

// CreateSchema creates tables and indexes if they are absent, it is safe to call repeatedly
func (s *Store) CreateSchema(ctx context.Context) error {
	statements := sqliteSchema
	if s.driver == DriverPostgres {
		statements = postgresSchema
	}

	for _, stmt := range statements {
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return err
		}
	}

	s.logger.Debugf("Schema is ready (%s)", s.driver)

	return nil
}
