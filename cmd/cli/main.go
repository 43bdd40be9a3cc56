package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"slidehub/internal/client"
	"slidehub/pkg/models"
	"slidehub/pkg/slides"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	global := flag.NewFlagSet("slidehub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	api := client.New(*baseURL)

	switch cmd {
	case "materials":
		handleMaterials(ctx, api, sub, args[2:])
	case "projects":
		handleProjects(ctx, api, sub, args[2:])
	case "pages":
		handlePages(ctx, api, sub, args[2:])
	case "watch":
		handleWatch(*baseURL, args[1:])
	case "sync":
		handleSync(sub, args[2:])
	case "notify":
		handleNotify(sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

// scopeFlags turns --scope/--project flags into a materials list scope.
// --scope project requires --project; --scope global targets the shared
// pool; --scope all lists everything.
func scopeFlags(scope, projectID string) client.Scope {
	switch scope {
	case "project":
		if projectID == "" {
			log.Fatal("--project is required with --scope project")
		}
		return client.Scope{Kind: "project", ProjectID: projectID}
	case "global":
		return client.Scope{Kind: "global"}
	case "all":
		return client.Scope{Kind: "all"}
	default:
		log.Fatalf("unknown scope %q (want project|global|all)", scope)
		return client.Scope{}
	}
}

func handleMaterials(ctx context.Context, api *client.Client, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("materials list", flag.ExitOnError)
		scope := fs.String("scope", "all", "project|global|all")
		projectID := fs.String("project", "", "project id for --scope project")
		search := fs.String("search", "", "filter by name/note/filename")
		asJSON := fs.Bool("json", false, "print raw JSON")
		_ = fs.Parse(args)

		ms := fetchMaterials(ctx, api, scopeFlags(*scope, *projectID), *search)
		if *asJSON {
			printJSON(ms)
			return
		}
		for _, m := range ms {
			line := fmt.Sprintf("%s  %s", m.ID, slides.MaterialDisplayName(m))
			if m.Note != "" {
				line += "  (" + m.Note + ")"
			}
			if m.CreatedAt != "" {
				line += "  " + m.CreatedAt
			}
			fmt.Println(line)
		}
		fmt.Printf("%d material(s)\n", len(ms))
	case "upload":
		fs := flag.NewFlagSet("materials upload", flag.ExitOnError)
		projectID := fs.String("project", "", "target project id (empty = global pool)")
		_ = fs.Parse(args)
		files := fs.Args()
		if len(files) == 0 {
			log.Fatal("usage: slidehub materials upload [--project id] <file> [file...]")
		}

		n, err := api.UploadMaterials(ctx, files, *projectID)
		if err != nil {
			log.Fatalf("upload failed: %v", err)
		}
		fmt.Printf("✅ uploaded %d file(s)\n", n)
	case "edit":
		fs := flag.NewFlagSet("materials edit", flag.ExitOnError)
		id := fs.String("id", "", "material id")
		name := fs.String("name", "", "display name (pass empty to clear)")
		note := fs.String("note", "", "note (pass empty to clear)")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("--id is required")
		}

		// pre-fill from the stored record so an edit of one field
		// leaves the other untouched; clearing means passing the flag
		// with an empty value explicitly
		current, err := api.GetMaterial(ctx, *id)
		if err != nil {
			log.Fatalf("edit failed: %v", err)
		}
		displayName, noteVal := current.DisplayName, current.Note
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				displayName = *name
			case "note":
				noteVal = *note
			}
		})

		m, err := api.UpdateMaterial(ctx, *id, displayName, noteVal)
		if err != nil {
			log.Fatalf("edit failed: %v", err)
		}
		printJSON(m)
	case "delete":
		handleMaterialBatch(ctx, api, "delete", args)
	case "move":
		handleMaterialBatch(ctx, api, "move", args)
	case "copy":
		handleMaterialBatch(ctx, api, "copy", args)
	default:
		log.Fatal("usage: slidehub materials <list|upload|edit|delete|move|copy>")
	}
}

// handleMaterialBatch covers delete/move/copy over an explicit id list or
// a whole filtered selection (--all with --scope/--search). Destructive
// runs ask for confirmation unless --yes.
func handleMaterialBatch(ctx context.Context, api *client.Client, op string, args []string) {
	fs := flag.NewFlagSet("materials "+op, flag.ExitOnError)
	scope := fs.String("scope", "all", "project|global|all (selection source for --all)")
	projectID := fs.String("project", "", "project id for --scope project")
	search := fs.String("search", "", "filter for --all selection")
	all := fs.Bool("all", false, "apply to every material matching --scope/--search")
	target := fs.String("to", "", "target project id for move/copy (empty = global pool)")
	yes := fs.Bool("yes", false, "skip confirmation prompt")
	_ = fs.Parse(args)

	ids := fs.Args()
	if *all {
		if len(ids) > 0 {
			log.Fatal("pass either explicit ids or --all, not both")
		}
		for _, m := range fetchMaterials(ctx, api, scopeFlags(*scope, *projectID), *search) {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		fmt.Println("nothing selected")
		return
	}

	prompt := fmt.Sprintf("%s %d material(s)", op, len(ids))
	if op != "delete" {
		dest := *target
		if dest == "" {
			dest = "global pool"
		}
		prompt += " to " + dest
	}
	if !*yes && !confirm(prompt) {
		fmt.Println("aborted")
		return
	}

	var err error
	switch op {
	case "delete":
		err = api.BulkDelete(ctx, ids)
	case "move":
		err = api.BulkMove(ctx, ids, *target)
	case "copy":
		err = api.BulkCopy(ctx, ids, *target)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", op, err)
	}
	fmt.Printf("✅ %s applied to %d material(s)\n", op, len(ids))
}

// fetchMaterials lists a scope and applies the client-side filter and
// newest-first ordering the way the materials panel shows them.
func fetchMaterials(ctx context.Context, api *client.Client, scope client.Scope, search string) []models.Material {
	ms, err := api.ListMaterials(ctx, scope)
	if err != nil {
		log.Fatalf("list materials failed: %v", err)
	}
	ms = slides.FilterMaterials(ms, search)
	slides.SortByCreatedAt(ms)
	return ms
}

func handleProjects(ctx context.Context, api *client.Client, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("projects list", flag.ExitOnError)
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		ps, err := api.ListProjects(ctx, *limit, *offset)
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(ps)
	case "create":
		fs := flag.NewFlagSet("projects create", flag.ExitOnError)
		title := fs.String("title", "", "project title")
		_ = fs.Parse(args)
		if *title == "" {
			log.Fatal("--title is required")
		}

		p, err := api.CreateProject(ctx, *title)
		if err != nil {
			log.Fatalf("create failed: %v", err)
		}
		printJSON(p)
	case "delete":
		fs := flag.NewFlagSet("projects delete", flag.ExitOnError)
		id := fs.String("id", "", "project id")
		yes := fs.Bool("yes", false, "skip confirmation prompt")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("--id is required")
		}
		if !*yes && !confirm("delete project "+*id+" and all of its pages and files") {
			fmt.Println("aborted")
			return
		}

		if err := api.DeleteProject(ctx, *id); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Println("✅ project deleted")
	default:
		log.Fatal("usage: slidehub projects <list|create|delete>")
	}
}

func handlePages(ctx context.Context, api *client.Client, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("pages list", flag.ExitOnError)
		projectID := fs.String("project", "", "project id")
		_ = fs.Parse(args)
		if *projectID == "" {
			log.Fatal("--project is required")
		}

		ps, err := api.ListPages(ctx, *projectID)
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		for _, p := range ps {
			title := ""
			if p.OutlineContent != nil {
				title = p.OutlineContent.Title
			}
			fmt.Printf("%2d  %-10s  %-10s  %s  %s\n",
				p.OrderIndex+1, slides.EffectivePageType(p, len(ps)), p.Status, p.ID, title)
		}
		fmt.Printf("%d page(s)\n", len(ps))
	case "show":
		fs := flag.NewFlagSet("pages show", flag.ExitOnError)
		id := fs.String("id", "", "page id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("--id is required")
		}

		p, err := api.GetPage(ctx, *id)
		if err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(p)
	case "add":
		fs := flag.NewFlagSet("pages add", flag.ExitOnError)
		projectID := fs.String("project", "", "project id")
		title := fs.String("title", "", "outline title")
		points := fs.String("points", "", "outline points, one per ; separator")
		_ = fs.Parse(args)
		if *projectID == "" {
			log.Fatal("--project is required")
		}

		p, err := api.CreatePage(ctx, *projectID, *title, splitPoints(*points))
		if err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(p)
	case "outline":
		fs := flag.NewFlagSet("pages outline", flag.ExitOnError)
		id := fs.String("id", "", "page id")
		title := fs.String("title", "", "outline title")
		points := fs.String("points", "", "outline points, one per ; separator")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("--id is required")
		}

		outline := &models.OutlineContent{Title: *title, Points: splitPoints(*points)}
		p, err := api.UpdatePage(ctx, *id, client.PageUpdate{OutlineContent: outline})
		if err != nil {
			log.Fatalf("outline failed: %v", err)
		}
		printJSON(p)
	case "describe":
		fs := flag.NewFlagSet("pages describe", flag.ExitOnError)
		id := fs.String("id", "", "page id")
		text := fs.String("text", "", "description text")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("--id is required")
		}

		desc := &models.DescriptionContent{Text: *text}
		p, err := api.UpdatePage(ctx, *id, client.PageUpdate{DescriptionContent: desc})
		if err != nil {
			log.Fatalf("describe failed: %v", err)
		}
		printJSON(p)
	case "type":
		fs := flag.NewFlagSet("pages type", flag.ExitOnError)
		id := fs.String("id", "", "page id")
		pageType := fs.String("type", "", "auto|cover|content|transition|ending")
		_ = fs.Parse(args)
		if *id == "" || *pageType == "" {
			log.Fatal("--id and --type are required")
		}

		p, err := api.UpdatePage(ctx, *id, client.PageUpdate{PageType: pageType})
		if err != nil {
			log.Fatalf("type failed: %v", err)
		}
		printJSON(p)
	case "attach":
		fs := flag.NewFlagSet("pages attach", flag.ExitOnError)
		id := fs.String("id", "", "page id")
		search := fs.String("search", "", "restrict to matching materials")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("--id is required")
		}

		p, err := api.GetPage(ctx, *id)
		if err != nil {
			log.Fatalf("attach failed: %v", err)
		}
		scope := client.Scope{Kind: "project", ProjectID: p.ProjectID}
		ms := fetchMaterials(ctx, api, scope, *search)
		if len(ms) == 0 {
			fmt.Println("no materials to attach")
			return
		}

		merged := slides.MergeMaterials(slides.DescriptionText(p.DescriptionContent), ms)
		upd := client.PageUpdate{DescriptionContent: &models.DescriptionContent{Text: merged}}
		if _, err := api.UpdatePage(ctx, *id, upd); err != nil {
			log.Fatalf("attach failed: %v", err)
		}
		fmt.Printf("✅ attached %d material(s)\n", len(ms))
	case "delete":
		fs := flag.NewFlagSet("pages delete", flag.ExitOnError)
		id := fs.String("id", "", "page id")
		yes := fs.Bool("yes", false, "skip confirmation prompt")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("--id is required")
		}
		if !*yes && !confirm("delete page "+*id) {
			fmt.Println("aborted")
			return
		}

		if err := api.DeletePage(ctx, *id); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Println("✅ page deleted")
	case "generate":
		fs := flag.NewFlagSet("pages generate", flag.ExitOnError)
		id := fs.String("id", "", "page id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("--id is required")
		}

		if err := api.GeneratePage(ctx, *id); err != nil {
			log.Fatalf("generate failed: %v", err)
		}
		fmt.Println("✅ generation queued")
	case "regenerate":
		fs := flag.NewFlagSet("pages regenerate", flag.ExitOnError)
		id := fs.String("id", "", "page id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("--id is required")
		}

		p, err := api.RegenerateDescription(ctx, *id)
		if err != nil {
			log.Fatalf("regenerate failed: %v", err)
		}
		fmt.Println(slides.DescriptionText(p.DescriptionContent))
	default:
		log.Fatal("usage: slidehub pages <list|show|add|outline|describe|type|attach|delete|generate|regenerate>")
	}
}

// handleWatch follows the WebSocket event stream and, while generations
// are in flight, prints a ticking elapsed badge per page.
func handleWatch(baseURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
	_ = fs.Parse(args)

	endpoint := *wsURL
	if endpoint == "" {
		var err error
		endpoint, err = websocketURL(baseURL, "/ws")
		if err != nil {
			log.Fatalf("ws url: %v", err)
		}
	}

	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		log.Fatalf("watch failed: %v", err)
	}
	defer conn.Close()
	log.Printf("[watch] connected to %s", endpoint)

	var mu sync.Mutex
	started := map[string]time.Time{}

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			for pageID, t := range started {
				secs := int(time.Since(t) / time.Second)
				fmt.Printf("⏱  %s generating %s\n", pageID, slides.FormatElapsed(secs))
			}
			mu.Unlock()
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("watch disconnected: %v", err)
		}
		var ev struct {
			Type   string `json:"type"`
			PageID string `json:"page_id"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(msg, &ev); err != nil {
			fmt.Println(string(msg))
			continue
		}
		switch ev.Type {
		case "generation.started":
			mu.Lock()
			started[ev.PageID] = time.Now()
			mu.Unlock()
		case "generation.finished":
			mu.Lock()
			t, ok := started[ev.PageID]
			delete(started, ev.PageID)
			mu.Unlock()
			if ok {
				secs := int(time.Since(t) / time.Second)
				fmt.Printf("✅ %s %s after %s\n", ev.PageID, ev.Status, slides.FormatElapsed(secs))
				continue
			}
			fmt.Printf("✅ %s %s\n", ev.PageID, ev.Status)
		default:
			fmt.Println(string(msg))
		}
	}
}

func handleSync(sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("sync listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP sync server address")
		pretty := fs.Bool("pretty", true, "pretty print JSON events")
		_ = fs.Parse(args)
		for {
			if err := runSyncTCP(*addr, *pretty); err != nil {
				log.Printf("[sync] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	default:
		log.Fatal("usage: slidehub sync listen")
	}
}

func handleNotify(sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("notify listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7071", "UDP notify server address")
		clientID := fs.String("client", "", "client id to register as")
		_ = fs.Parse(args)
		id := *clientID
		if id == "" {
			id = fmt.Sprintf("cli-%d", os.Getpid())
		}
		if err := runNotifyUDP(*addr, id); err != nil {
			log.Fatalf("notify listen failed: %v", err)
		}
	default:
		log.Fatal("usage: slidehub notify listen")
	}
}

func runSyncTCP(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync] connected to %s", addr)
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		line := reader.Bytes()
		if !pretty {
			fmt.Println(string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func runNotifyUDP(addr, clientID string) error {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	reg, _ := json.Marshal(map[string]string{"type": "register", "client_id": clientID})
	if _, err := conn.Write(reg); err != nil {
		return err
	}
	log.Printf("[notify] registered as %s at %s", clientID, addr)

	buf := make([]byte, 2048)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return err
		}
		fmt.Println(string(buf[:n]))
	}
}

func splitPoints(s string) []string {
	if s == "" {
		return nil
	}
	return slides.CleanPoints(strings.Split(s, ";"))
}

func confirm(action string) bool {
	fmt.Printf("%s? [y/N] ", action)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("slidehub <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  materials list|upload|edit|delete|move|copy")
	fmt.Println("  projects  list|create|delete")
	fmt.Println("  pages     list|show|add|outline|describe|type|attach|delete|generate|regenerate")
	fmt.Println("  watch")
	fmt.Println("  sync      listen")
	fmt.Println("  notify    listen")
}
