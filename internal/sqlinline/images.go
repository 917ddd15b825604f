package sqlinline

const QInsertGalleryImage = `--sql df221140-8cb5-419a-82a1-e9a57742c4ce
insert into generated_images (id, user_id, generation_id, prompt, original_prompt, image_url, image_size, seed, category, is_public, created_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::text, $7::bigint, $8::text, $9::boolean, now())
returning id::text, created_at;
`

const galleryColumns = `id::text, user_id::text, coalesce(generation_id::text, ''), prompt, original_prompt, image_url, image_size, seed, category, is_public, created_at`

const QListPublicImages = `--sql 6d977200-600f-442b-a1bc-38309225928e
select ` + galleryColumns + `
from generated_images
where is_public
order by created_at desc, id desc
limit $1::int offset $2::int;
`

const QListUserImages = `--sql b114a026-ed91-491c-8dcc-464f95518d80
select ` + galleryColumns + `
from generated_images
where user_id = $1::uuid
order by created_at desc, id desc
limit $2::int offset $3::int;
`
