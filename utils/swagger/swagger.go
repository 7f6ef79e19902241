package swagger

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
)

type SwaggerConfig struct {
	Title         string
	SwaggerDocURL string
	AuthURL       string
}

// The login box posts {email, password} to AuthURL and copies data.access_token
// into the BearerAuth authorization field.
const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui.css" />
    <style>
        body { margin: 0; background: #fafafa; }
        .login-form-section { background: #f8f9fa; border: 1px solid #dee2e6; border-radius: 5px; padding: 16px; margin: 12px; }
        .login-form-input { padding: 6px 10px; margin-right: 8px; border: 1px solid #d9d9d9; border-radius: 4px; }
        .login-form-button { background: #4990e2; color: #fff; border: none; border-radius: 4px; padding: 7px 16px; cursor: pointer; }
    </style>
</head>
<body>
    <div class="login-form-section">
        <input type="email" id="login-email" class="login-form-input" placeholder="Email" />
        <input type="password" id="login-password" class="login-form-input" placeholder="Password" />
        <button class="login-form-button" onclick="performAuthentication()">Login</button>
        <span id="login-status"></span>
    </div>
    <div id="swagger-ui" data-doc-url="{{.SwaggerDocURL}}" data-auth-url="{{.AuthURL}}"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-bundle.js" charset="UTF-8"></script>
    <script src="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-standalone-preset.js" charset="UTF-8"></script>
    <script>
        const root = document.getElementById('swagger-ui');
        let ui;
        window.onload = function() {
            ui = SwaggerUIBundle({
                url: root.dataset.docUrl,
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis, SwaggerUIStandalonePreset],
                layout: "StandaloneLayout",
                docExpansion: "list",
                validatorUrl: null,
                persistAuthorization: true,
                supportedSubmitMethods: ['get', 'post', 'put', 'delete', 'patch']
            });
        };

        window.performAuthentication = async function() {
            const status = document.getElementById('login-status');
            const email = document.getElementById('login-email').value.trim();
            const password = document.getElementById('login-password').value;
            if (!email || !password) {
                status.textContent = 'Enter both email and password';
                return;
            }
            try {
                const response = await fetch(root.dataset.authUrl, {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify({ email: email, password: password })
                });
                const body = await response.json();
                if (!response.ok) {
                    throw new Error(body.message || 'Authentication failed');
                }
                const token = body.data && body.data.access_token;
                if (!token) {
                    throw new Error('No access token received');
                }
                ui.preauthorizeApiKey('BearerAuth', 'Bearer ' + token);
                status.textContent = 'Authorized';
            } catch (error) {
                status.textContent = 'Login failed: ' + error.message;
            }
        };
    </script>
</body>
</html>`

// ServeSwaggerUI serves the Swagger UI with a login box
func ServeSwaggerUI(config SwaggerConfig) gin.HandlerFunc {
	if config.Title == "" {
		config.Title = "API Documentation"
	}
	if config.SwaggerDocURL == "" {
		config.SwaggerDocURL = "/swagger/doc.json"
	}
	if config.AuthURL == "" {
		config.AuthURL = "/api/auth/login"
	}

	tmpl := template.Must(template.New("swagger").Parse(swaggerHTML))

	return func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(c.Writer, config); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render Swagger UI"})
		}
	}
}

// ServeDoc serves the OpenAPI document registered with swag under instance
func ServeDoc(instance string) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc(instance)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "API documentation not registered"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}
