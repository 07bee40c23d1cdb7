//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	jobboardgrpc "github.com/vibast-solutions/ms-go-jobboard/app/grpc"
	"github.com/vibast-solutions/ms-go-jobboard/app/types"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	defaultHTTPBase = "http://localhost:8080"
	defaultGRPCAddr = "localhost:9090"
)

type httpClient struct {
	baseURL string
	client  *http.Client
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Token   string `json:"token"`
	Data    struct {
		User *types.UserResponse `json:"user"`
		Job  *types.JobResponse  `json:"job"`
	} `json:"data"`
}

func httpBaseURL() string {
	if base := os.Getenv("JOBBOARD_HTTP_URL"); base != "" {
		return base
	}
	return defaultHTTPBase
}

func grpcAddr() string {
	if addr := os.Getenv("JOBBOARD_GRPC_ADDR"); addr != "" {
		return addr
	}
	return defaultGRPCAddr
}

func newHTTPClient() *httpClient {
	return &httpClient{
		baseURL: httpBaseURL(),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal response %q failed: %v", string(raw), err)
	}
	return resp.StatusCode, env
}

func waitForHTTP(baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/metrics")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("http service not ready at %s", baseURL)
}

func waitForGRPC(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("grpc service not ready at %s", addr)
}

func stepper(t *testing.T) func(name string, fn func(t *testing.T)) {
	abort := false
	return func(name string, fn func(t *testing.T)) {
		t.Run(name, func(t *testing.T) {
			if abort {
				t.Skip("previous step failed")
			}
			defer func() {
				if t.Failed() {
					abort = true
				}
			}()
			fn(t)
		})
	}
}

func TestJobboardE2E_HTTPFlow(t *testing.T) {
	if err := waitForHTTP(httpBaseURL(), 30*time.Second); err != nil {
		t.Fatalf("http not ready: %v", err)
	}

	client := newHTTPClient()
	step := stepper(t)

	suffix := time.Now().UnixNano()
	state := struct {
		ownerEmail     string
		applicantEmail string
		password       string
		newPassword    string
		ownerToken     string
		applicantToken string
		jobID          uint64
	}{
		ownerEmail:     fmt.Sprintf("owner+%d@example.com", suffix),
		applicantEmail: fmt.Sprintf("applicant+%d@example.com", suffix),
		password:       "pass12345",
		newPassword:    "newpass12345",
	}

	signup := func(email string) map[string]string {
		return map[string]string{
			"firstName":       "E2E",
			"lastName":        "User",
			"email":           email,
			"password":        state.password,
			"passwordConfirm": state.password,
		}
	}

	step("LoginBeforeSignup", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
			"email":    state.ownerEmail,
			"password": state.password,
		})
		if code != http.StatusUnauthorized || env.Message != "Email or password is wrong!" {
			t.Fatalf("expected 401, got %d %+v", code, env)
		}
	})

	step("Signup", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, "/api/v1/users/signup", "", signup(state.ownerEmail))
		if code != http.StatusCreated || env.Token == "" || env.Data.User == nil {
			t.Fatalf("signup failed: %d %+v", code, env)
		}
		state.ownerToken = env.Token
	})

	step("SignupDuplicate", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, "/api/v1/users/signup", "", signup(state.ownerEmail))
		if code != http.StatusBadRequest || env.Status != "fail" {
			t.Fatalf("expected duplicate signup to fail, got %d %+v", code, env)
		}
	})

	step("SignupPasswordMismatch", func(t *testing.T) {
		body := signup("mismatch-" + state.ownerEmail)
		body["passwordConfirm"] = "something-else"
		code, env := client.do(t, http.MethodPost, "/api/v1/users/signup", "", body)
		if code != http.StatusBadRequest || env.Message != "Passwords are not the same!" {
			t.Fatalf("expected mismatch, got %d %+v", code, env)
		}
	})

	step("LoginWrongPassword", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
			"email":    state.ownerEmail,
			"password": "wrong-password",
		})
		if code != http.StatusUnauthorized || env.Message != "Email or password is wrong!" {
			t.Fatalf("expected 401, got %d %+v", code, env)
		}
	})

	step("Login", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
			"email":    state.ownerEmail,
			"password": state.password,
		})
		if code != http.StatusOK || env.Token == "" {
			t.Fatalf("login failed: %d %+v", code, env)
		}
		state.ownerToken = env.Token
	})

	step("CreateJobRequiresLogin", func(t *testing.T) {
		code, _ := client.do(t, http.MethodPost, "/api/v1/jobs", "", map[string]string{"title": "Go engineer"})
		if code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", code)
		}
	})

	step("CreateJob", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, "/api/v1/jobs", state.ownerToken, map[string]string{"title": "Go engineer"})
		if code != http.StatusCreated || env.Data.Job == nil || env.Data.Job.ID == 0 {
			t.Fatalf("create job failed: %d %+v", code, env)
		}
		state.jobID = env.Data.Job.ID
	})

	step("ApplyForOwnJob", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, fmt.Sprintf("/api/v1/applications/apply-for-job/%d", state.jobID), state.ownerToken, map[string]string{})
		if code != http.StatusBadRequest || env.Message != "You cannot apply for the job posted by yourself!" {
			t.Fatalf("expected self application to fail, got %d %+v", code, env)
		}
	})

	step("SignupApplicant", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, "/api/v1/users/signup", "", signup(state.applicantEmail))
		if code != http.StatusCreated || env.Token == "" {
			t.Fatalf("signup failed: %d %+v", code, env)
		}
		state.applicantToken = env.Token
	})

	step("ApplyForJob", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, fmt.Sprintf("/api/v1/applications/apply-for-job/%d", state.jobID), state.applicantToken, map[string]string{
			"coverLetter": "Hello",
		})
		if code != http.StatusOK || env.Message != "Application sent!" {
			t.Fatalf("apply failed: %d %+v", code, env)
		}
	})

	step("ApplyTwice", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, fmt.Sprintf("/api/v1/applications/apply-for-job/%d", state.jobID), state.applicantToken, map[string]string{})
		if code != http.StatusBadRequest || env.Message != "You have already applied for this job!" {
			t.Fatalf("expected duplicate application to fail, got %d %+v", code, env)
		}
	})

	step("ApplyForUnknownJob", func(t *testing.T) {
		code, _ := client.do(t, http.MethodPost, "/api/v1/applications/apply-for-job/999999999", state.applicantToken, map[string]string{})
		if code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", code)
		}
	})

	step("ForgotPasswordUnknownEmail", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, "/api/v1/users/forgot-password", "", map[string]string{
			"email": "nobody-" + state.ownerEmail,
		})
		if code != http.StatusBadRequest || env.Message != "There is no account with this email!" {
			t.Fatalf("expected 400, got %d %+v", code, env)
		}
	})

	step("ResetPasswordFabricatedToken", func(t *testing.T) {
		code, env := client.do(t, http.MethodPatch, "/api/v1/users/reset-password/not-a-real-token", "", map[string]string{
			"password":        state.newPassword,
			"passwordConfirm": state.newPassword,
		})
		if code != http.StatusBadRequest || env.Message != "Your token is invalid or expired. Please try again!" {
			t.Fatalf("expected 400, got %d %+v", code, env)
		}
	})

	step("UpdatePasswordWrongOld", func(t *testing.T) {
		code, env := client.do(t, http.MethodPatch, "/api/v1/users/update-password", state.ownerToken, map[string]string{
			"oldPassword":     "wrong-password",
			"newPassword":     state.newPassword,
			"passwordConfirm": state.newPassword,
		})
		if code != http.StatusUnauthorized || env.Message != "Your password is not correct" {
			t.Fatalf("expected 401, got %d %+v", code, env)
		}
	})

	var oldToken string
	step("UpdatePassword", func(t *testing.T) {
		// Tokens carry second precision; make the old one strictly older.
		time.Sleep(2100 * time.Millisecond)

		oldToken = state.ownerToken
		code, env := client.do(t, http.MethodPatch, "/api/v1/users/update-password", state.ownerToken, map[string]string{
			"oldPassword":     state.password,
			"newPassword":     state.newPassword,
			"passwordConfirm": state.newPassword,
		})
		if code != http.StatusOK || env.Token == "" {
			t.Fatalf("update password failed: %d %+v", code, env)
		}
		state.ownerToken = env.Token
	})

	step("OldTokenRejected", func(t *testing.T) {
		code, env := client.do(t, http.MethodPost, "/api/v1/jobs", oldToken, map[string]string{"title": "Another job"})
		if code != http.StatusUnauthorized || env.Message != "Password has been changed. Please log in again." {
			t.Fatalf("expected old token to be rejected, got %d %+v", code, env)
		}
	})

	step("NewTokenAccepted", func(t *testing.T) {
		code, _ := client.do(t, http.MethodPost, "/api/v1/jobs", state.ownerToken, map[string]string{"title": "Another job"})
		if code != http.StatusCreated {
			t.Fatalf("expected new token to work, got %d", code)
		}
	})

	step("LoginWithNewPassword", func(t *testing.T) {
		code, _ := client.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
			"email":    state.ownerEmail,
			"password": state.newPassword,
		})
		if code != http.StatusOK {
			t.Fatalf("expected login with new password, got %d", code)
		}
	})
}

func TestJobboardE2E_GRPCFlow(t *testing.T) {
	if err := waitForGRPC(grpcAddr(), 30*time.Second); err != nil {
		t.Fatalf("grpc not ready: %v", err)
	}

	conn, err := grpc.NewClient(grpcAddr(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(jobboardgrpc.CodecName)),
	)
	if err != nil {
		t.Fatalf("grpc new client failed: %v", err)
	}
	defer conn.Close()

	invoke := func(ctx context.Context, method string, req, resp any) error {
		return conn.Invoke(ctx, jobboardgrpc.FullMethod(method), req, resp)
	}
	step := stepper(t)

	email := fmt.Sprintf("grpc+%d@example.com", time.Now().UnixNano())
	password := "pass12345"
	var token string
	var userID uint64

	step("Signup", func(t *testing.T) {
		var reply types.SessionReply
		err := invoke(context.Background(), "Signup", &types.SignupRequest{
			FirstName:       "GRPC",
			LastName:        "User",
			Email:           email,
			Password:        password,
			PasswordConfirm: password,
		}, &reply)
		if err != nil || reply.Token == "" || reply.User == nil {
			t.Fatalf("signup failed: %v %+v", err, reply)
		}
		token = reply.Token
		userID = reply.User.ID
	})

	step("LoginWrongPassword", func(t *testing.T) {
		var reply types.SessionReply
		err := invoke(context.Background(), "Login", &types.LoginRequest{Email: email, Password: "wrong"}, &reply)
		if status.Code(err) != codes.Unauthenticated {
			t.Fatalf("expected Unauthenticated, got %v", err)
		}
	})

	step("ValidateToken", func(t *testing.T) {
		var reply types.ValidateTokenResponse
		if err := invoke(context.Background(), "ValidateToken", &types.ValidateTokenRequest{Token: token}, &reply); err != nil {
			t.Fatalf("validate token failed: %v", err)
		}
		if !reply.Valid || reply.UserID != userID {
			t.Fatalf("unexpected reply: %+v", reply)
		}
	})

	step("UpdatePasswordWithoutSession", func(t *testing.T) {
		var reply types.SessionReply
		err := invoke(context.Background(), "UpdatePassword", &types.UpdatePasswordRequest{}, &reply)
		if status.Code(err) != codes.Unauthenticated {
			t.Fatalf("expected Unauthenticated, got %v", err)
		}
	})

	step("ApplyForUnknownJob", func(t *testing.T) {
		ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
		var reply types.MessageReply
		err := invoke(ctx, "ApplyForJob", &types.ApplyForJobRequest{JobID: 999999999}, &reply)
		if status.Code(err) != codes.NotFound {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})
}
