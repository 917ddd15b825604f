package sqlinline

const QInsertUsageEvent = `--sql 9a3279a3-aa0c-4953-b972-d9ae4a5f0a27
insert into usage_events (id, user_id, generation_id, event_type, success, latency_ms, country, properties, created_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::boolean, $5::int, $6::text, coalesce($7::jsonb, '{}'::jsonb), now());
`
