package shopify

const allProductsQuery = `
  query GetAllProducts($cursor: String) {
    products(first: 50, after: $cursor) {
      edges {
        node {
          id
          title
          variants(first: 50) {
            edges {
              node {
                id
                title
                price
              }
            }
          }
        }
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
`

const productsByCollectionQuery = `
  query GetProductsByCollection($collectionId: ID!, $cursor: String) {
    collection(id: $collectionId) {
      products(first: 50, after: $cursor) {
        edges {
          node {
            id
            title
            variants(first: 50) {
              edges {
                node {
                  id
                  title
                  price
                  compareAtPrice
                }
              }
            }
          }
        }
        pageInfo {
          hasNextPage
          endCursor
        }
      }
    }
  }
`

const productsByQueryQuery = `
  query GetProductsByQuery($query: String!, $cursor: String) {
    products(first: 50, after: $cursor, query: $query) {
      edges {
        node {
          id
          title
          variants(first: 50) {
            edges {
              node {
                id
                title
                price
                compareAtPrice
              }
            }
          }
        }
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
`

const collectionsQuery = `
  query GetCollections($cursor: String) {
    collections(first: 50, after: $cursor) {
      edges {
        node {
          id
          title
        }
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
`

const vendorsAndTypesQuery = `
  query GetVendorsAndTypes {
    shop {
      productVendors(first: 250) { edges { node } }
      productTypes(first: 250) { edges { node } }
    }
  }
`

const bulkUpdateVariantsMutation = `
  mutation ProductVariantsBulkUpdate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
    productVariantsBulkUpdate(productId: $productId, variants: $variants) {
      productVariants {
        id
        price
        compareAtPrice
      }
      userErrors {
        field
        message
      }
    }
  }
`

const activeSubscriptionsQuery = `
  query GetActiveSubscriptions {
    appInstallation {
      activeSubscriptions {
        id
        name
        status
      }
    }
  }
`
