package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskdash/internal/service"
)

// FakeServerSecret signs the tokens the fake server issues.
var FakeServerSecret = []byte("fake-server-secret")

// FakeServer is an HTTP fake of the remote task API.
type FakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]serverAccount // email -> account
	tasks    []service.Task
	failures map[string]int    // "METHOD /route" -> status
	bodies   map[string][]byte // "METHOD /route" -> last request body
	requests []string
	now      func() time.Time
}

type serverAccount struct {
	hash []byte
	user service.Identity
}

type fakeClaims struct {
	Email  string   `json:"email"`
	Groups []string `json:"cognito:groups,omitempty"`
	jwt.RegisteredClaims
}

// NewFakeServer starts a fake API server. Close it when done.
func NewFakeServer() *FakeServer {
	gin.SetMode(gin.TestMode)

	f := &FakeServer{
		accounts: make(map[string]serverAccount),
		failures: make(map[string]int),
		bodies:   make(map[string][]byte),
		now:      time.Now,
	}

	r := gin.New()
	r.Use(f.recordRequest, f.injectFailure)

	r.POST("/users/login", f.login)
	r.POST("/users/register", f.register)

	authed := r.Group("/", f.requireAuth)
	authed.GET("/users", f.listUsers)
	authed.GET("/tasks", f.listTasks)
	authed.GET("/tasks/user/:id", f.listUserTasks)
	authed.POST("/tasks", f.createTask)
	authed.PUT("/tasks/:id", f.updateTask)
	authed.DELETE("/tasks/:id", f.deleteTask)

	f.Server = httptest.NewServer(r)
	return f
}

// AddUser registers an account. Admins get the Admins group in their token.
func (f *FakeServer) AddUser(user service.Identity, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[user.Email] = serverAccount{hash: hash, user: user}
}

// AddTask seeds a task exactly as given.
func (f *FakeServer) AddTask(task service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
}

// Tasks returns a copy of the server-side tasks.
func (f *FakeServer) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.Task(nil), f.tasks...)
}

// FailWith makes every request to route answer with status.
// route is "METHOD /path" using gin patterns, e.g. "PUT /tasks/:id".
func (f *FakeServer) FailWith(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = status
}

// LastBody returns the last request body sent to route.
func (f *FakeServer) LastBody(route string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[route]
}

// Requests returns the requests seen so far as "METHOD /path".
func (f *FakeServer) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// Token issues a signed token for the given account, as login would.
func (f *FakeServer) Token(user service.Identity) string {
	claims := fakeClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(f.now().Add(time.Hour)),
		},
	}
	if strings.EqualFold(user.Role, "admin") {
		claims.Groups = []string{service.AdminGroup}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(FakeServerSecret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (f *FakeServer) recordRequest(c *gin.Context) {
	route := c.Request.Method + " " + c.FullPath()
	body, _ := c.GetRawData()
	c.Request.Body = http.NoBody
	if len(body) > 0 {
		c.Set("body", body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, c.Request.Method+" "+c.Request.URL.Path)
	f.bodies[route] = body
	f.mu.Unlock()
	c.Next()
}

func (f *FakeServer) injectFailure(c *gin.Context) {
	route := c.Request.Method + " " + c.FullPath()
	f.mu.Lock()
	status, ok := f.failures[route]
	f.mu.Unlock()
	if ok {
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.Next()
}

func (f *FakeServer) requireAuth(c *gin.Context) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
		return
	}

	claims := &fakeClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return FakeServerSecret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	c.Set("claims", claims)
	c.Next()
}

func bindBody(c *gin.Context, v any) bool {
	raw, _ := c.Get("body")
	body, _ := raw.([]byte)
	if err := json.Unmarshal(body, v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (f *FakeServer) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindBody(c, &req) {
		return
	}

	f.mu.Lock()
	acct, ok := f.accounts[req.Email]
	f.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": f.Token(acct.user),
		"user":        acct.user,
	})
}

func (f *FakeServer) register(c *gin.Context) {
	var req service.Registration
	if !bindBody(c, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	f.mu.Lock()
	_, exists := f.accounts[req.Email]
	f.mu.Unlock()
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
		return
	}

	user := service.Identity{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Firstname: req.Firstname,
		Role:      req.Role,
	}
	f.AddUser(user, req.Password)
	c.JSON(http.StatusCreated, gin.H{"message": "registered", "user_id": user.ID})
}

func (f *FakeServer) listUsers(c *gin.Context) {
	f.mu.Lock()
	users := make([]service.User, 0, len(f.accounts))
	for _, acct := range f.accounts {
		users = append(users, service.User{
			ID:        acct.user.ID,
			Username:  acct.user.Username,
			Email:     acct.user.Email,
			Firstname: acct.user.Firstname,
			Role:      acct.user.Role,
		})
	}
	f.mu.Unlock()
	sortUsers(users)
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (f *FakeServer) listTasks(c *gin.Context) {
	claims := c.MustGet("claims").(*fakeClaims)
	isAdmin := false
	for _, g := range claims.Groups {
		if g == service.AdminGroup {
			isAdmin = true
		}
	}
	if !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admins only"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": f.Tasks()})
}

func (f *FakeServer) listUserTasks(c *gin.Context) {
	id := c.Param("id")
	tasks := []service.Task{}
	for _, t := range f.Tasks() {
		if t.AssignedTo == id {
			tasks = append(tasks, t)
		}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (f *FakeServer) createTask(c *gin.Context) {
	var draft service.TaskDraft
	if !bindBody(c, &draft) {
		return
	}
	if draft.Status == "" {
		draft.Status = service.StatusPending
	}
	task := service.Task{
		ID:          uuid.NewString(),
		Title:       draft.Title,
		Description: draft.Description,
		AssignedTo:  draft.AssignedTo,
		Status:      draft.Status,
		CreatedAt:   f.now().UTC().Format(time.RFC3339),
		Deadline:    draft.Deadline,
	}
	f.AddTask(task)
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (f *FakeServer) updateTask(c *gin.Context) {
	var patch service.TaskPatch
	if !bindBody(c, &patch) {
		return
	}
	id := c.Param("id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.AssignedTo != nil {
			t.AssignedTo = *patch.AssignedTo
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Deadline != nil {
			t.Deadline = *patch.Deadline
		}
		f.tasks[i] = t
		c.JSON(http.StatusOK, gin.H{"task": t})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("task %s not found", id)})
}

func (f *FakeServer) deleteTask(c *gin.Context) {
	id := c.Param("id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("task %s not found", id)})
}

func sortUsers(users []service.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
}
