package sanity

// Pre-built GROQ queries for gap detection and content inventory.

// ProductsWithoutReviews lists products no review document points at
const ProductsWithoutReviews = `
*[_type == "product"]{
  _id, name, brand, category, activeIngredient
} | order(name asc)
[!(_id in *[_type == "review"].product._ref)]
`

// ContentCountsByType counts published content per document type
const ContentCountsByType = `
{
  "reviews": count(*[_type == "review"]),
  "useCases": count(*[_type == "useCase"]),
  "comparisons": count(*[_type == "comparison"]),
  "faqs": count(*[_type == "faq"]),
  "ingredients": count(*[_type == "ingredient"]),
  "products": count(*[_type == "product"])
}
`

// ExistingUseCaseSlugs lists best-for guide slugs already covered
const ExistingUseCaseSlugs = `
*[_type == "useCase"].slug.current
`

// ExistingReviewSlugs lists review slugs already covered
const ExistingReviewSlugs = `
*[_type == "review"].slug.current
`

// ExistingComparisonSlugs lists comparison slugs already covered
const ExistingComparisonSlugs = `
*[_type == "comparison"].slug.current
`

// ProductByName finds a product by exact name, case-insensitive
const ProductByName = `
*[_type == "product" && lower(name) == lower($name)][0]{
  _id, name, brand
}
`

// ProductByNameContains finds products by partial name match
const ProductByNameContains = `
*[_type == "product" && lower(name) match lower($term)]{
  _id, name, brand
} | order(name asc)[0..4]
`

// ExistingReviewsWithProducts lists reviews with slugs and product names,
// used by the writer for internal alternative links
const ExistingReviewsWithProducts = `
*[_type == "review"]{
  "slug": slug.current,
  title,
  "productName": product->name
} | order(title asc)
`
