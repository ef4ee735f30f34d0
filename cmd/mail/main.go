package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/config"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/platform"
	"github.com/wneessen/go-mail"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer client.Close()

	// 启动时先确认能连上邮件服务器
	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		return
	}

	comp, err := newComposer(cfg.Email.SMTP.Username, cfg.Email.TemplateDir)
	if err != nil {
		logger.Error("无法加载邮件模板", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 消费邮件队列
	 **********************************************/
	broker, err := platform.OpenMailBroker(cfg)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer broker.Close()

	msgs, err := broker.Channel.Consume(
		broker.Queue.Name,
		"",    // 由 RabbitMQ 分配消费者标识
		false, // 手动确认
		false, // 不独占队列
		false, // RabbitMQ 不支持 noLocal，必须为 false
		false, // 等待 RabbitMQ 响应
		nil,
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					stop()
					return
				}
				deliver(logger, client, comp, msg)
			}
		}
	}()

	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-ctx.Done()

	logger.Info("正在关闭 mail worker...")
	wg.Wait()
	logger.Info("mail worker 已成功关闭")
}

// deliver 发送一条消息对应的邮件，无法构建的消息直接丢弃，发送失败的消息重新入队
func deliver(logger *slog.Logger, client *mail.Client, comp *composer, msg amqp.Delivery) {
	m, message, err := comp.compose(msg.Body)
	if err != nil {
		logger.Error("无法构建邮件", slog.String("error", err.Error()))
		_ = msg.Nack(false, false)
		return
	}
	logger.Info("收到邮件", slog.String("type", message.Type), slog.String("to", message.To))

	if err := client.DialAndSend(m); err != nil {
		logger.Error("邮件发送失败", slog.String("type", message.Type), slog.String("error", err.Error()))
		_ = msg.Nack(false, true)
		return
	}

	_ = msg.Ack(false)
}
