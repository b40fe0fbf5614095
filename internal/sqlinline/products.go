package sqlinline

const QInsertProduct = `--sql 3b8f0c7a-51d2-4e8b-9c3f-7a1e5d920b44
insert into products(
  id,
  title,
  description,
  price,
  currency,
  category,
  attributes,
  original_images,
  product_images,
  effect_images,
  grid_images,
  status,
  created_at,
  updated_at
) values (
  $1::uuid,
  $2::text,
  $3::text,
  $4::double precision,
  $5::text,
  $6::text,
  $7::jsonb,
  $8::jsonb,
  $9::jsonb,
  $10::jsonb,
  $11::jsonb,
  $12::text,
  now(),
  now()
);
`

const QSelectProductByID = `--sql 9d4a2e6f-0b83-47c1-a5d9-2f6c81e37a05
select
  id, title, description, price, currency, category, attributes,
  original_images, product_images, effect_images, grid_images,
  status, created_at, updated_at
from products
where id = $1::uuid
limit 1;
`

const QListProducts = `--sql 7c15f8d2-6a94-4b07-8e21-d39b64c0fa18
select
  id, title, description, price, currency, category, attributes,
  original_images, product_images, effect_images, grid_images,
  status, created_at, updated_at
from products
order by created_at desc;
`

const QSearchProducts = `--sql e2a97b04-3d58-4f6c-b1a0-85c4f27d9e63
select
  id, title, description, price, currency, category, attributes,
  original_images, product_images, effect_images, grid_images,
  status, created_at, updated_at
from products
where title ilike '%' || $1::text || '%'
   or description ilike '%' || $1::text || '%'
   or category ilike '%' || $1::text || '%'
order by created_at desc;
`

const QUpdateProduct = `--sql 4f6d1a89-c237-40e5-9b7f-6e08a3d51c92
update products set
  title           = coalesce($2::text, title),
  description     = coalesce($3::text, description),
  price           = coalesce($4::double precision, price),
  currency        = coalesce($5::text, currency),
  category        = coalesce($6::text, category),
  attributes      = coalesce($7::jsonb, attributes),
  original_images = coalesce($8::jsonb, original_images),
  product_images  = coalesce($9::jsonb, product_images),
  effect_images   = coalesce($10::jsonb, effect_images),
  grid_images     = coalesce($11::jsonb, grid_images),
  status          = coalesce($12::text, status),
  updated_at      = now()
where id = $1::uuid;
`

const QDeleteProduct = `--sql a81c5f30-72b9-4dae-8630-1f94d6b27e51
delete from products where id = $1::uuid;
`

const QDeleteProducts = `--sql 5e093c71-48f6-4a2d-bc58-903a7d1e64f0
delete from products where id = any($1::uuid[]);
`

const QCountProducts = `--sql 1d7e42b6-9a05-4c83-bf16-52c8d0a39e74
select count(*) from products;
`

const QCountProductsSince = `--sql 68b3d905-e14a-4f72-9c2d-07a5f861cb30
select count(*) from products where created_at >= $1::timestamptz;
`
