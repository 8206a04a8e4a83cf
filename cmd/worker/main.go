// The worker consumes assessment-submission events and sends the
// confirmation email for each stored record.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/config"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/db"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/email"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/events"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/models"
)

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.RabbitURL == "" {
		log.Fatal("RABBIT_URL is required for the worker")
	}

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	smtp := email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(cfg.RabbitQueue, true, false, false, false, nil)
	if err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := workerConcurrency()

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m events.SubmissionMessage
				if err := json.Unmarshal(d.Body, &m); err != nil || m.AssessmentID == "" {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := handleSubmission(ctx, gdb, smtp, m.AssessmentID); err != nil {
					log.Printf("worker=%d submission %s failed cost=%s err=%v", workerID, m.AssessmentID, time.Since(start), err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed assessment=%s err=%v", workerID, m.AssessmentID, err)
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

func handleSubmission(ctx context.Context, gdb *gorm.DB, smtp email.SMTPConfig, assessmentID string) error {
	var a models.Assessment
	if err := gdb.WithContext(ctx).First(&a, "id = ?", assessmentID).Error; err != nil {
		return err
	}

	if !smtp.Configured() {
		log.Printf("confirmation for %s skipped (smtp not configured)", a.Email)
		return nil
	}

	subject := "HealthBridge — Your health assessment was received"
	body := "Hello " + a.Name + ",\n\n" +
		"Thank you for completing your health assessment. Your information will help us serve you better.\n\n" +
		"Reference: " + a.ID + "\n\n" +
		"Best regards,\n" +
		"HealthBridge Seva Kendra\n"
	return email.SendText(smtp, a.Email, subject, body)
}
