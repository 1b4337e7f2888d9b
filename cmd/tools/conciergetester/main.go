package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lejockey/concierge/backend/internal/config"
	"github.com/lejockey/concierge/backend/internal/i18n"
	"github.com/lejockey/concierge/backend/internal/model/menu"
	"github.com/lejockey/concierge/backend/internal/service/ai"
	"github.com/lejockey/concierge/backend/internal/service/concierge"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	mode := flag.String("mode", "chat", "测试模式: chat 或 asr")
	message := flag.String("message", "", "chat 模式的单条消息，留空则进入交互模式")
	audioPath := flag.String("audio", "", "ASR 输入音频文件路径")
	language := flag.String("lang", "fr", "界面语言: fr 或 en")
	session := flag.String("session", "", "自定义 sessionID，留空则自动生成")
	timeout := flag.Duration("timeout", 45*time.Second, "单次请求超时时间")

	flag.Parse()

	provider, err := ai.NewProvider(context.Background(), cfg.AI)
	if err != nil {
		log.Fatalf("AI 初始化失败: %v", err)
	}
	if provider == nil {
		log.Fatal("AI 未启用，请先配置 GEMINI_API_KEY 或 ARK_* 环境变量")
	}

	catalog := menu.NewMemoryStore(menu.Seed())
	if cfg.Catalog.Path != "" {
		loaded, err := menu.LoadFile(cfg.Catalog.Path)
		if err != nil {
			log.Fatalf("菜单加载失败: %v", err)
		}
		catalog.Replace(loaded)
	}

	svc := concierge.NewService(provider, catalog, ai.Options(cfg.AI))
	lang := i18n.Parse(*language)

	sessionID := *session
	if sessionID == "" {
		sessionID = fmt.Sprintf("manual-%d", time.Now().UnixNano())
	}

	switch *mode {
	case "chat":
		runChat(svc, catalog, sessionID, *message, lang, *timeout)
	case "asr":
		runASR(svc, *audioPath, lang, *timeout)
	default:
		flag.Usage()
		log.Fatal("请通过 -mode=chat 或 -mode=asr 指定测试模式")
	}
}

func runChat(svc *concierge.Service, catalog menu.Store, sessionID, message string, lang i18n.Language, timeout time.Duration) {
	handlers := concierge.Handlers{
		AddToOrder: func(_ context.Context, itemName string, quantity int) concierge.OrderResult {
			item, ok := catalog.Resolve(itemName)
			if !ok {
				log.Printf("[tool] addToOrder: %q 不在菜单中", itemName)
				return concierge.OrderResult{Message: "Item not found: " + itemName}
			}
			log.Printf("[tool] addToOrder: %dx %s (%s)", quantity, item.Name, item.Price)
			return concierge.OrderResult{Success: true, Message: fmt.Sprintf("Added %dx %s", quantity, item.Name), Price: item.Price}
		},
		OpenCab: func(context.Context) {
			log.Printf("[tool] openCab")
		},
	}

	send := func(text string) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		started := time.Now()
		raw := svc.Send(ctx, sessionID, text, lang, handlers)
		directives := concierge.ParseDirectives(raw)

		fmt.Println(directives.Text)
		if len(directives.Options) > 0 {
			fmt.Printf("  options: %s\n", strings.Join(directives.Options, " | "))
		}
		if directives.PaymentRequested {
			fmt.Println("  [payment requested]")
		}
		log.Printf("回复耗时 %s", time.Since(started).Round(time.Millisecond))
	}

	if strings.TrimSpace(message) != "" {
		send(message)
		return
	}

	fmt.Println(concierge.GreetingText(lang))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			return
		}
		send(text)
	}
}

func runASR(svc *concierge.Service, audioPath string, lang i18n.Language, timeout time.Duration) {
	if audioPath == "" {
		log.Fatal("ASR 模式需要通过 -audio 指定音频文件路径")
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		log.Fatalf("读取音频文件失败: %v", err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(audioPath)))
	if mimeType == "" {
		mimeType = concierge.DefaultAudioMIMEType
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Printf("开始进行 ASR 测试: file=%s mime=%s language=%s", audioPath, mimeType, lang)
	text, err := svc.TranscribeAudio(ctx, audio, mimeType, lang)
	if err != nil {
		log.Fatalf("ASR 调用失败: %v", err)
	}
	log.Printf("ASR 识别成功: text=%q", text)
}
