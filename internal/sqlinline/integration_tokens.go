package sqlinline

const QSelectIntegrationToken = `--sql 3f1c6a94-2b7e-4d85-9c31-58a0de2b7c16
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql b27d90e1-64aa-4c0f-8f02-1df3c5a9e884
with incoming as (
    select
        $1::text as provider,
        $2::text as token,
        coalesce($3::jsonb, '{}'::jsonb) as properties
)
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), (select provider from incoming), (select token from incoming), (select properties from incoming), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`

const QDeleteIntegrationToken = `--sql 7c45f2ab-9318-4d6e-b0a7-3e92c81f5d0a
delete from integration_tokens
where provider = $1::text;
`
