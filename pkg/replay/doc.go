// Package replay prevents one-time codes from being accepted twice.
//
// A Guard keys each accepted code by owner and remembers it in a Store for
// exactly as long as the code could still pass validation. Two stores are
// provided: MemoryStore for single-process deployments and tests, and
// RedisStore for anything that runs more than one verifier.
//
//	client, err := replay.ConnectRedis(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	guard := replay.NewGuard(replay.NewRedisStore(client), "2fa.code")
//
//	if err := guard.MarkUsed(ctx, owner, code, now.Unix(), params); replay.IsReplay(err) {
//		// reject
//	}
package replay
