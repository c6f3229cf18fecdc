// dbcheck probes the service's external collaborators: postgres, redis and
// the chess.com archive API. Intended for deploy-time smoke checks.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mlarcin/chess-results-stats/internal/chesscom"
	"github.com/mlarcin/chess-results-stats/internal/storage"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	redisURL := os.Getenv("REDIS_URL")
	probeUser := os.Getenv("CHESSCOM_PROBE_USERNAME")

	if databaseURL == "" {
		log.Println("DATABASE_URL not set; skipping database check")
	} else {
		db, err := storage.Open(databaseURL)
		if err != nil {
			log.Printf("database error: %v", err)
		} else {
			var one int
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
				log.Printf("database probe error: %v", err)
			} else {
				log.Println("database ok")
			}
			cancel()
			_ = db.Close()
		}
	}

	if redisURL == "" {
		log.Println("REDIS_URL not set; skipping redis check")
	} else {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Printf("redis url error: %v", err)
		} else {
			rdb := redis.NewClient(opt)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := rdb.Ping(ctx).Err(); err != nil {
				log.Printf("redis probe error: %v", err)
			} else {
				log.Println("redis ok")
			}
			cancel()
			_ = rdb.Close()
		}
	}

	if probeUser == "" {
		log.Println("CHESSCOM_PROBE_USERNAME not set; skipping chess.com check")
		return
	}
	client := chesscom.NewClient(os.Getenv("CHESSCOM_BASE_URL"), chesscom.WithTimeout(8*time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	now := time.Now()
	archive, err := client.MonthlyArchive(ctx, probeUser, now.Year(), now.Month())
	if err != nil {
		log.Printf("chess.com probe error: %v", err)
		return
	}
	log.Printf("chess.com ok: %d games this month for %s", len(archive.Games), probeUser)
}
