package sqlinline

// Upload statements return the columns in the order scanned by
// repo.scanUpload.

const QInsertUpload = `--sql 6cbccbae-c8fb-4d7f-b051-27ccae3415af
insert into uploads (
  id,
  original_image_url,
  requested_products,
  mockup_urls,
  mockup_errors,
  user_identifier,
  theme,
  country,
  status,
  error_message,
  shopify_product_ids,
  shopify_product_urls,
  created_at,
  updated_at
) values (
  gen_random_uuid(),
  $1::text,
  coalesce($2::jsonb, '[]'::jsonb),
  coalesce($3::jsonb, '{}'::jsonb),
  coalesce($4::jsonb, '{}'::jsonb),
  nullif($5::text, ''),
  nullif($6::text, ''),
  nullif($7::text, ''),
  $8::text,
  null,
  '{}'::jsonb,
  '{}'::jsonb,
  now(),
  now()
)
returning
  id,
  created_at,
  updated_at,
  original_image_url,
  requested_products,
  mockup_urls,
  mockup_errors,
  user_identifier,
  theme,
  country,
  status,
  error_message,
  shopify_product_ids,
  shopify_product_urls;
`

const QSelectUploadByID = `--sql ea6b21a4-ed0f-425b-9468-943c47320e45
select
  id,
  created_at,
  updated_at,
  original_image_url,
  requested_products,
  mockup_urls,
  mockup_errors,
  user_identifier,
  theme,
  country,
  status,
  error_message,
  shopify_product_ids,
  shopify_product_urls
from uploads
where id = $1::uuid
limit 1;
`

const QListRecentUploads = `--sql 28369f8d-7fd8-4cb9-9b4a-ec8732b9a44f
select
  id,
  created_at,
  updated_at,
  original_image_url,
  requested_products,
  mockup_urls,
  mockup_errors,
  user_identifier,
  theme,
  country,
  status,
  error_message,
  shopify_product_ids,
  shopify_product_urls
from uploads
order by created_at desc
limit $1::int;
`

const QDeleteUpload = `--sql 37b94a77-5036-457e-985f-84fe6ff6df16
delete from uploads
where id = $1::uuid;
`

const QAttachStorefrontInfo = `--sql 58fd3d67-06be-40ab-9aa9-a3d0cf411b83
update uploads
set
  shopify_product_ids = jsonb_set(coalesce(shopify_product_ids, '{}'::jsonb), array[$2::text], to_jsonb($3::text), true),
  shopify_product_urls = jsonb_set(coalesce(shopify_product_urls, '{}'::jsonb), array[$2::text], to_jsonb($4::text), true),
  updated_at = now()
where id = $1::uuid
returning
  id,
  created_at,
  updated_at,
  original_image_url,
  requested_products,
  mockup_urls,
  mockup_errors,
  user_identifier,
  theme,
  country,
  status,
  error_message,
  shopify_product_ids,
  shopify_product_urls;
`

const QClaimQueuedUpload = `--sql 5579582c-c1b5-488b-b45f-e772f42b2d5f
with next_job as (
  select id
  from uploads
  where status = 'QUEUED'
  order by created_at asc
  for update skip locked
  limit 1
)
update uploads u
set status = 'RUNNING', updated_at = now()
from next_job
where u.id = next_job.id
returning
  u.id,
  u.created_at,
  u.updated_at,
  u.original_image_url,
  u.requested_products,
  u.mockup_urls,
  u.mockup_errors,
  u.user_identifier,
  u.theme,
  u.country,
  u.status,
  u.error_message,
  u.shopify_product_ids,
  u.shopify_product_urls;
`

const QCompleteUpload = `--sql b57d5cd8-8a12-4bdf-ba3f-9ee1d9c4e5be
update uploads
set
  status = 'SUCCEEDED',
  mockup_urls = coalesce($2::jsonb, '{}'::jsonb),
  mockup_errors = coalesce($3::jsonb, '{}'::jsonb),
  error_message = null,
  updated_at = now()
where id = $1::uuid;
`

const QFailUpload = `--sql d4270284-c4d5-446d-b584-907b274c2aea
update uploads
set
  status = 'FAILED',
  error_message = $2::text,
  mockup_errors = coalesce($3::jsonb, mockup_errors),
  updated_at = now()
where id = $1::uuid;
`
