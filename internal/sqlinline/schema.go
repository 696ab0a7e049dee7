package sqlinline

const QCreateUploadsTable = `--sql 03507afe-e9f0-4a0e-add5-1ec8d71239a6
create table if not exists uploads (
  id uuid primary key default gen_random_uuid(),
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now(),
  original_image_url text not null,
  requested_products jsonb not null default '[]'::jsonb,
  mockup_urls jsonb not null default '{}'::jsonb,
  mockup_errors jsonb not null default '{}'::jsonb,
  user_identifier text,
  theme text,
  country text,
  status text not null default 'SUCCEEDED',
  error_message text,
  shopify_product_ids jsonb not null default '{}'::jsonb,
  shopify_product_urls jsonb not null default '{}'::jsonb
);
`

const QCreateUploadsQueueIndex = `--sql 92a3024a-e8aa-4269-b613-7f24fb109857
create index if not exists uploads_status_created_at_idx
on uploads (status, created_at);
`

const QCreateIntegrationTokensTable = `--sql 251dae4a-a09e-4999-82e4-9831c91cf5ac
create table if not exists integration_tokens (
  id uuid primary key default gen_random_uuid(),
  provider text not null unique,
  token text not null,
  properties jsonb not null default '{}'::jsonb,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
`

// Schema lists the bootstrap statements in execution order.
var Schema = []string{
	QCreateUploadsTable,
	QCreateUploadsQueueIndex,
	QCreateIntegrationTokensTable,
}
