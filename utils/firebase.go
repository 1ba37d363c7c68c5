// utils/firebase.go
package utils

import (
	"classroom/config"
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

var (
	AuthClient *auth.Client
	DBClient   *db.Client
)

// FirebaseInit initializes the Firebase App with the Auth and Realtime
// Database clients.
func FirebaseInit() {
	ctx := context.Background()
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsFile)

	app, err := firebase.NewApp(ctx, &firebase.Config{
		DatabaseURL: config.AppConfig.FirebaseDatabaseURL,
	}, opt)
	if err != nil {
		log.Fatalf("firebase: error initializing app: %v", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("firebase: error getting Auth client: %v", err)
	}

	dbClient, err := app.Database(ctx)
	if err != nil {
		log.Fatalf("firebase: error getting Database client: %v", err)
	}

	AuthClient = authClient
	DBClient = dbClient
}
