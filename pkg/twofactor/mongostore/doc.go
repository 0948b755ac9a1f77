// Package mongostore persists two-factor records in MongoDB.
//
// Documents are keyed by a unique (owner_type, owner_id) index. The shared
// secret and the recovery codes are sealed with pkg/secrets under a key derived
// for each owner; safe devices are stored as plain subdocuments since only
// their tokens are matched.
//
// Concurrent updates use compare-and-set on the document version:
//
//	store, err := mongostore.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer store.Close(context.Background())
//
//	svc, err := twofactor.NewService(store, twofactor.DefaultConfig())
package mongostore
