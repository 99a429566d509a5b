package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"civic_feed/internal/pkg/config"
	"civic_feed/pkg/model"
	"civic_feed/pkg/utils"

	"github.com/spf13/cobra"
)

type options struct {
	BaseURL  string
	Secret   string
	Users    int
	Attempts int
}

var httpClient *http.Client

func init() {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "stress_tool",
		Short:         "Load generator for the engagement endpoints",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.BaseURL, "base-url", "http://localhost:8080", "server address")
	root.PersistentFlags().StringVar(&opts.Secret, "secret", os.Getenv("JWT_SECRET"), "JWT secret used to sign test tokens")

	likes := &cobra.Command{
		Use:   "likes",
		Short: "Race concurrent likes against one post and check the live count",
		Long: `Publishes a post, then every simulated user sends several concurrent like
requests. Exactly one like per user must survive, so the post's like count
must equal the number of users.

Example:
  stress_tool likes --users 2000 --attempts 3 --secret $JWT_SECRET`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLikes(opts)
		},
	}
	likes.Flags().IntVar(&opts.Users, "users", 1000, "number of simulated users")
	likes.Flags().IntVar(&opts.Attempts, "attempts", 3, "like requests per user")

	root.AddCommand(likes)
	return root
}

func runLikes(opts *options) error {
	if opts.Secret == "" {
		return fmt.Errorf("--secret is required")
	}
	config.GlobalConfig.JWT.Secret = opts.Secret

	authorToken, _, err := utils.GenerateToken(model.NewID(), "citizen")
	if err != nil {
		return err
	}
	postID, err := publishPost(opts.BaseURL, authorToken)
	if err != nil {
		return fmt.Errorf("publish post: %w", err)
	}
	fmt.Printf("开始压测：%d 个用户各点赞 %d 次 (PostID: %s)...\n", opts.Users, opts.Attempts, postID)

	tokens := make([]string, opts.Users)
	for i := range tokens {
		if tokens[i], _, err = utils.GenerateToken(model.NewID(), "citizen"); err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	var accepted, rejected, failed int64
	start := time.Now()

	for _, token := range tokens {
		for j := 0; j < opts.Attempts; j++ {
			wg.Add(1)
			go func(token string) {
				defer wg.Done()
				switch code := like(opts.BaseURL, postID, token); {
				case code == http.StatusOK:
					atomic.AddInt64(&accepted, 1)
				case code == http.StatusBadRequest:
					atomic.AddInt64(&rejected, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}(token)
		}
	}
	wg.Wait()
	duration := time.Since(start)

	total := opts.Users * opts.Attempts
	count, err := likeCount(opts.BaseURL, postID)
	if err != nil {
		return fmt.Errorf("read like count: %w", err)
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("总请求数: %d\n", total)
	fmt.Printf("QPS: %.2f\n", float64(total)/duration.Seconds())
	fmt.Printf("点赞成功: %d (预期: %d)\n", accepted, opts.Users)
	fmt.Printf("重复点赞被拒: %d\n", rejected)
	fmt.Printf("请求失败: %d\n", failed)
	fmt.Printf("实时点赞数: %d\n", count)
	fmt.Println("--------------------------------------------------")

	if failed == 0 && count != int64(opts.Users) {
		return fmt.Errorf("like count %d does not match %d users", count, opts.Users)
	}
	return nil
}

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

func do(req *http.Request) (int, *envelope, error) {
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode %s: %w", string(body), err)
	}
	return resp.StatusCode, &env, nil
}

func publishPost(baseURL, token string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"content": "压测专用动态"})
	req, err := http.NewRequest(http.MethodPost, baseURL+"/posts", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	status, env, err := do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d", status)
	}
	var post struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &post); err != nil {
		return "", err
	}
	return post.ID, nil
}

func like(baseURL, postID, token string) int {
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/posts/%s/like", baseURL, postID), nil)
	if err != nil {
		return 0
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

func likeCount(baseURL, postID string) (int64, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/posts/%s", baseURL, postID), nil)
	if err != nil {
		return 0, err
	}
	_, env, err := do(req)
	if err != nil {
		return 0, err
	}
	var post struct {
		Likes int64 `json:"likes"`
	}
	if err := json.Unmarshal(env.Data, &post); err != nil {
		return 0, err
	}
	return post.Likes, nil
}
