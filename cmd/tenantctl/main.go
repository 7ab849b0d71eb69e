// tenantctl es el CLI de operador contra el Admin API de tenantplane.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	APIKey    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-Admin-API-Key", c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func (c *client) run(method, path string, body []byte) error {
	status, respBody, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	c.print(status, respBody)
	if status/100 != 2 {
		return fmt.Errorf("status=%d", status)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("TENANTPLANE_ADMIN_URL", "http://localhost:8080")
		apiKey  = envOr("TENANTPLANE_ADMIN_KEY", "")
		out     = envOr("TENANTPLANE_OUT", "text")
	)

	root := &cobra.Command{
		Use:   "tenantctl",
		Short: "CLI admin para tenantplane (vía /v1/admin)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				return fmt.Errorf("falta API key (flag --admin-api-key o env TENANTPLANE_ADMIN_KEY)")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&baseURL, "admin-api-url", baseURL, "URL base del Admin API (env TENANTPLANE_ADMIN_URL)")
	root.PersistentFlags().StringVar(&apiKey, "admin-api-key", apiKey, "API key del Admin API (env TENANTPLANE_ADMIN_KEY)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: 60 * time.Second}}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL, cl.APIKey, cl.OutFormat = baseURL, apiKey, out
	}

	tenantsCmd := &cobra.Command{Use: "tenants", Short: "Operaciones sobre tenants"}

	var createName, createEmail, createPassword string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Registrar un tenant y provisionarlo en los tres servicios",
		RunE: func(cmd *cobra.Command, args []string) error {
			if createName == "" || createEmail == "" || createPassword == "" {
				return fmt.Errorf("faltan --name, --admin-email o --admin-password")
			}
			body, _ := json.Marshal(map[string]string{
				"name":          createName,
				"adminEmail":    createEmail,
				"adminPassword": createPassword,
			})
			return cl.run("POST", "/v1/admin/tenants", body)
		},
	}
	createCmd.Flags().StringVar(&createName, "name", "", "Nombre visible del tenant")
	createCmd.Flags().StringVar(&createEmail, "admin-email", "", "Email del admin seed")
	createCmd.Flags().StringVar(&createPassword, "admin-password", "", "Password del admin seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar tenants registrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.run("GET", "/v1/admin/tenants", nil)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <tenantId>",
		Short: "Ver un tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.run("GET", "/v1/admin/tenants/"+args[0], nil)
		},
	}

	provisionCmd := &cobra.Command{
		Use:   "provision <tenantId>",
		Short: "Re-ejecutar el provisioning (retry tras un partial failure)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.run("POST", "/v1/admin/tenants/"+args[0]+"/provision", nil)
		},
	}

	var deleteYes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <tenantId>",
		Short: "Deprovisionar: dropea las bases del tenant y borra el registro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !deleteYes {
				return fmt.Errorf("operación destructiva: confirme con --yes")
			}
			return cl.run("DELETE", "/v1/admin/tenants/"+args[0], nil)
		},
	}
	deleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "Confirmar el drop de las bases")

	var statusValue string
	setStatusCmd := &cobra.Command{
		Use:   "set-status <tenantId>",
		Short: "Cambiar el estado de ciclo de vida (active|suspended|paused|expired)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if statusValue == "" {
				return fmt.Errorf("falta --status")
			}
			body, _ := json.Marshal(map[string]string{"status": statusValue})
			return cl.run("PATCH", "/v1/admin/tenants/"+args[0], body)
		},
	}
	setStatusCmd.Flags().StringVar(&statusValue, "status", "", "Nuevo estado")

	tenantsCmd.AddCommand(createCmd, listCmd, getCmd, provisionCmd, deleteCmd, setStatusCmd)
	root.AddCommand(tenantsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
