// Package models defines the core domain models for Budgetly.
//
// # Current Models
//
//   - Participant: a roster member who can be attached to bill items
//   - LineItem / Bill: a receipt and its purchasable entries
//   - Message / SessionSummary: the chat assistant conversation
//   - ExpenseCategory: classification shared by budgets and transactions
//   - Goal, Budget, Transaction: the planning and history entities
//   - User: a registered account (password auth + JWT sessions)
//
// # Design Principles
//
//  1. Participants come from a fixed roster and are never mutated; only the
//     per-item assignment sets change.
//  2. Bills are read-only after creation except for item assignments.
//  3. Chat transcripts are append-only; messages are patched in place only to
//     resolve a placeholder or finish a streaming reveal.
//  4. Use ID values instead of pointers for relationships to avoid circular
//     references.
package models
