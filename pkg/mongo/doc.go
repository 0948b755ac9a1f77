// Package mongo connects to MongoDB with the official v2 driver.
//
// Config is read from MONGODB_* environment variables. Connect retries until
// the server answers a ping; ConnectDatabase also selects the configured
// database. The error helpers classify driver errors without importing the
// driver at call sites.
//
//	db, err := mongo.ConnectDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
package mongo
