package sqlinline

const profileColumns = `user_id::text, email, daily_credits, credits_used_today, is_blocked, created_at, updated_at`

// QEnsureProfile creates the profile on first sight and returns the stored row.
const QEnsureProfile = `--sql 8357488c-94a4-4581-ac4d-bf5d66c960c7
with inserted as (
    insert into profiles (user_id, email, daily_credits, credits_used_today, is_blocked, created_at, updated_at)
    values ($1::uuid, $2::text, $3::int, 0, false, now(), now())
    on conflict (user_id) do nothing
    returning ` + profileColumns + `
)
select * from inserted
union all
select ` + profileColumns + ` from profiles where user_id = $1::uuid
limit 1;
`

const QSelectProfile = `--sql c9aff606-651c-440b-bc3c-ad3e7e55cc2a
select ` + profileColumns + `
from profiles
where user_id = $1::uuid
limit 1;
`

const QSelectProfileByEmail = `--sql f9d6cb62-33cb-47ba-9bf9-039feb62ab70
select ` + profileColumns + `
from profiles
where lower(email) = lower($1::text)
limit 1;
`

// QConsumeCredit decrements one credit only while credits remain and the
// account is not blocked; no row is returned otherwise.
const QConsumeCredit = `--sql a59c541e-6be9-4f41-9ddd-dfe64331dea0
update profiles
set daily_credits = daily_credits - 1,
    credits_used_today = credits_used_today + 1,
    updated_at = now()
where user_id = $1::uuid
  and daily_credits > 0
  and not is_blocked
returning ` + profileColumns + `;
`

const QGrantCredits = `--sql 89f10f89-d319-4c36-b9fb-d56355e692ba
update profiles
set daily_credits = daily_credits + $2::int,
    updated_at = now()
where user_id = $1::uuid
returning ` + profileColumns + `;
`

const QSetProfileBlocked = `--sql 1f88cd67-cfc1-45f6-b32f-784523df5d00
update profiles
set is_blocked = $2::boolean,
    updated_at = now()
where user_id = $1::uuid
returning ` + profileColumns + `;
`

// QResetDailyCredits tops every profile up to the daily allowance and clears
// today's usage. Purchased credits above the allowance are kept.
const QResetDailyCredits = `--sql 615ac7db-efd6-4f0f-a8e9-08ed8334eeb5
update profiles
set daily_credits = greatest(daily_credits, $1::int),
    credits_used_today = 0,
    updated_at = now()
where credits_used_today > 0
   or daily_credits < $1::int;
`
