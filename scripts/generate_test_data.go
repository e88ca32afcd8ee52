package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/config"
	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/repository"
	"github.com/Choos37ricK/blog-engine/internal/service"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 测试数据生成器
func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}

	// 初始化数据库
	gdb, err := db.Init(cfg.DatabaseURL, logger.Warn)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")
	if err := seed(context.Background(), gdb, time.Now().UTC().Truncate(time.Second)); err != nil {
		log.Fatal("生成测试数据失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Println("管理员: admin@example.com (密码: admin123)")
	fmt.Println("作者: alice@example.com, bob@example.com (密码: user123)")
}

type seedUser struct {
	name      string
	email     string
	password  string
	moderator bool
}

type seedPost struct {
	author  string
	title   string
	text    string
	tags    []string
	age     time.Duration
	active  bool
	status  db.ModerationStatus
	likers  []string
	haters  []string
	remarks []string
}

var seedUsers = []seedUser{
	{name: "admin", email: "admin@example.com", password: "admin123", moderator: true},
	{name: "alice", email: "alice@example.com", password: "user123"},
	{name: "bob", email: "bob@example.com", password: "user123"},
}

const day = 24 * time.Hour

var seedPosts = []seedPost{
	{
		author: "alice@example.com",
		title:  "使用Go语言构建高性能Web服务",
		text:   "Go语言因其出色的并发性能和简洁的语法，成为构建高性能Web服务的理想选择。本文分享框架选择、性能优化和实际案例分析。",
		tags:   []string{"Go", "Web开发", "技术"},
		age:    400 * day,
		active: true,
		status: db.ModerationAccepted,
		likers: []string{"bob@example.com", "admin@example.com"},
		remarks: []string{
			"bob@example.com:Very helpful overview of the http stack.",
		},
	},
	{
		author: "bob@example.com",
		title:  "SQLite数据库优化实践",
		text:   "SQLite作为轻量级数据库，在很多场景下都有出色表现。本文分享索引优化、查询优化、连接池配置和事务处理等实用技巧。",
		tags:   []string{"数据库", "技术"},
		age:    30 * day,
		active: true,
		status: db.ModerationAccepted,
		likers: []string{"alice@example.com"},
		haters: []string{"admin@example.com"},
	},
	{
		author: "alice@example.com",
		title:  "GORM使用技巧与最佳实践",
		text:   "GORM是Go语言中最流行的ORM库之一。本文总结了常用用法、性能优化建议以及在实际项目中的经验，帮助开发者更高效地进行数据库操作。",
		tags:   []string{"Go", "数据库"},
		age:    2 * day,
		active: true,
		status: db.ModerationAccepted,
		remarks: []string{
			"admin@example.com:Preloading associations deserves its own post.",
			"bob@example.com:Agreed, the scopes section was the best part.",
		},
	},
	{
		author: "bob@example.com",
		title:  "Gin框架中间件开发实战",
		text:   "中间件是Gin框架的核心能力之一。本文从请求日志、指标采集和会话管理三个场景出发，介绍中间件的编写方式与注意事项。",
		tags:   []string{"Go", "Web开发"},
		age:    6 * time.Hour,
		active: true,
		status: db.ModerationNew,
	},
	{
		author: "bob@example.com",
		title:  "一篇被驳回的草稿",
		text:   "这篇文章在审核中被驳回，只有作者本人能够看到它。内容需要补充更多的细节和示例代码之后再重新提交审核。",
		tags:   []string{"思考"},
		age:    5 * day,
		active: true,
		status: db.ModerationDeclined,
	},
	{
		author: "alice@example.com",
		title:  "个人知识管理系统的设计与实现",
		text:   "在信息爆炸的时代，如何有效管理个人知识成为一个重要课题。本文分享系统架构、功能特性和技术选型等关键要素，目前仍是隐藏状态。",
		tags:   []string{"思考", "项目"},
		age:    10 * day,
		active: false,
		status: db.ModerationAccepted,
	},
	{
		author: "alice@example.com",
		title:  "定时发布：下周的技术周报",
		text:   "这篇文章的发布时间在未来，到达发布时间之前不会出现在公开列表中，也不会计入日历和统计数据里。",
		tags:   []string{"技术"},
		age:    -7 * day,
		active: true,
		status: db.ModerationAccepted,
	},
}

// seed 写入演示用户、文章、投票和评论；已有文章时跳过，可重复执行。
func seed(ctx context.Context, gdb *gorm.DB, now time.Time) error {
	users, err := createTestUsers(ctx, gdb)
	if err != nil {
		return err
	}

	var count int64
	if err := gdb.WithContext(ctx).Model(&db.Post{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count posts: %w", err)
	}
	if count > 0 {
		fmt.Println("文章已存在，跳过创建")
		return nil
	}

	repo := repository.NewPostRepository(gdb)
	votes := service.NewVoteService(gdb, repo)
	comments := service.NewCommentService(gdb, repo, config.DefaultPolicy())
	votes.SetClock(func() time.Time { return now })
	comments.SetClock(func() time.Time { return now })

	moderator := users["admin@example.com"]
	for _, item := range seedPosts {
		author := users[item.author]
		post := db.Post{
			IsActive:         item.active,
			ModerationStatus: item.status,
			AuthorID:         author.ID,
			PublishTime:      now.Add(-item.age),
			Title:            item.title,
			Text:             item.text,
		}
		if item.status != db.ModerationNew {
			post.ModeratorID = &moderator.ID
		}
		if err := repo.Create(ctx, &post, item.tags); err != nil {
			return fmt.Errorf("create post %q: %w", item.title, err)
		}

		for _, email := range item.likers {
			if _, err := votes.Like(ctx, service.ViewerFromUser(users[email]), post.ID); err != nil {
				return fmt.Errorf("like post %q: %w", item.title, err)
			}
		}
		for _, email := range item.haters {
			if _, err := votes.Dislike(ctx, service.ViewerFromUser(users[email]), post.ID); err != nil {
				return fmt.Errorf("dislike post %q: %w", item.title, err)
			}
		}
		for _, remark := range item.remarks {
			email, text, _ := strings.Cut(remark, ":")
			if _, err := comments.AddComment(ctx, service.ViewerFromUser(users[email]), service.CommentInput{
				PostID: post.ID,
				Text:   text,
			}); err != nil {
				return fmt.Errorf("comment on %q: %w", item.title, err)
			}
		}
	}

	fmt.Printf("✅ 测试文章创建完成: %d 篇\n", len(seedPosts))
	return nil
}

// 创建测试用户，已存在的邮箱直接复用
func createTestUsers(ctx context.Context, gdb *gorm.DB) (map[string]*db.User, error) {
	users := make(map[string]*db.User, len(seedUsers))
	for _, item := range seedUsers {
		var user db.User
		err := gdb.WithContext(ctx).Where("email = ?", item.email).First(&user).Error
		if err == nil {
			users[item.email] = &user
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load user %s: %w", item.email, err)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(item.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user = db.User{Name: item.name, Email: item.email, Password: string(hashed), IsModerator: item.moderator}
		if err := gdb.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user %s: %w", item.email, err)
		}
		users[item.email] = &user
	}
	fmt.Println("✅ 测试用户就绪")
	return users, nil
}
