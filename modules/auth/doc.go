// Package auth implements the credential lifecycle: registration with
// email verification, password login, and password recovery.
//
// Every proof of mailbox ownership is a challenge token: a signed,
// purpose-tagged JWT that is also mirrored into a persisted single-use
// record. Validating the signature alone is never enough; the record must
// still exist, which is what makes consumed and superseded links dead.
//
// The package is split into three layers:
//
//   - Service holds the flow logic and depends only on the AccountStorage
//     and VerificationStorage interfaces, the token codec, and an email
//     sender.
//   - PostgresStorage, RedisVerificationStorage, and MemoryStorage are the
//     shipped storage implementations.
//   - Handler exposes the flows as a chi router with a stable JSON error
//     contract.
//
// Wiring:
//
//	store := auth.NewPostgresStorage(pool)
//	svc := auth.NewService(cfg, store, store, codec, mailer,
//	    auth.WithLogger(log),
//	)
//	r.Mount("/", auth.NewHandler(svc).Routes())
package auth
