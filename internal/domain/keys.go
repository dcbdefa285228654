package domain

// KeyPrefix namespaces every key lumen writes to the shared store.
const KeyPrefix = "lumen:"
