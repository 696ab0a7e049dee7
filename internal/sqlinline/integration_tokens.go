package sqlinline

// QSelectIntegrationToken returns the non-blank token stored for $1 provider.
const QSelectIntegrationToken = `--sql 3e6b8f71-52a4-4c0d-9f1e-7a2c5d8b9e04
select btrim(token)
from integration_tokens
where provider = $1::text
  and btrim(token) <> '';
`

// QUpsertIntegrationToken replaces the token for $1 provider and merges $3
// into the stored properties.
const QUpsertIntegrationToken = `--sql b91d4c2e-0a7f-4e36-8c55-2f9e1d7a6b38
insert into integration_tokens (provider, token, properties)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb))
on conflict (provider) do update set
  token = excluded.token,
  properties = integration_tokens.properties || excluded.properties,
  updated_at = now();
`
