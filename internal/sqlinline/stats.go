package sqlinline

const QStatsSummary = `--sql d07f01fc-22d2-4407-bd77-5327e7f4b265
select
  (select count(*) from profiles) as total_users,
  (select count(*) from generated_images) as images_generated,
  (select count(*) from generated_images where created_at > now() - interval '24 hours') as images_last_24h,
  count(*) filter (where event_type = 'GENERATION' and success) as generations_succeeded,
  count(*) filter (where event_type = 'GENERATION' and not success) as generations_failed
from usage_events;
`
