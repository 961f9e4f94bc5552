package core

type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Event is a FusionAuth webhook event type and its display label.
type Event struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

var fusionAuthEvents = []Event{
	{Type: "user.create", Label: "User Create"},
	{Type: "user.create.complete", Label: "User Create Complete"},
	{Type: "user.update", Label: "User Update"},
	{Type: "user.update.complete", Label: "User Update Complete"},
	{Type: "user.deactivate", Label: "User Deactivate"},
	{Type: "user.reactivate", Label: "User Reactivate"},
	{Type: "user.delete", Label: "User Delete"},
	{Type: "user.delete.complete", Label: "User Delete Complete"},
	{Type: "user.bulk.create", Label: "User Bulk Create"},
	{Type: "user.action", Label: "User Action"},
	{Type: "user.email.update", Label: "User Email Update"},
	{Type: "user.email.verified", Label: "User Email Verified"},
	{Type: "user.identity-provider.link", Label: "User IdP Link"},
	{Type: "user.identity-provider.unlink", Label: "User IdP Unlink"},
	{Type: "user.login.success", Label: "User Login Success"},
	{Type: "user.login.failed", Label: "User Login Failed"},
	{Type: "user.login.new-device", Label: "User Login New Device"},
	{Type: "user.login.suspicious", Label: "User Login Suspicious"},
	{Type: "user.password.breach", Label: "User Password Breach"},
	{Type: "user.password.reset.send", Label: "User Password Reset Send"},
	{Type: "user.password.reset.start", Label: "User Password Reset Start"},
	{Type: "user.password.reset.success", Label: "User Password Reset Success"},
	{Type: "user.password.update", Label: "User Password Update"},
	{Type: "user.registration.create", Label: "User Registration Create"},
	{Type: "user.registration.create.complete", Label: "User Registration Create Complete"},
	{Type: "user.registration.update", Label: "User Registration Update"},
	{Type: "user.registration.update.complete", Label: "User Registration Update Complete"},
	{Type: "user.registration.delete", Label: "User Registration Delete"},
	{Type: "user.registration.delete.complete", Label: "User Registration Delete Complete"},
	{Type: "user.registration.verified", Label: "User Registration Verified"},
	{Type: "user.two-factor.method.add", Label: "User 2FA Method Add"},
	{Type: "user.two-factor.method.remove", Label: "User 2FA Method Remove"},
	{Type: "jwt.public-key.update", Label: "JWT Public Key Update"},
	{Type: "jwt.refresh", Label: "JWT Refresh"},
	{Type: "jwt.refresh-token.revoke", Label: "JWT Refresh Token Revoke"},
	{Type: "kickstart.success", Label: "Kickstart Success"},
	{Type: "audit-log.create", Label: "Audit Log Create"},
	{Type: "group.create", Label: "Group Create"},
	{Type: "group.create.complete", Label: "Group Create Complete"},
	{Type: "group.delete", Label: "Group Delete"},
	{Type: "group.delete.complete", Label: "Group Delete Complete"},
	{Type: "group.member.add", Label: "Group Member Add"},
	{Type: "group.member.add.complete", Label: "Group Member Add Complete"},
	{Type: "group.member.remove", Label: "Group Member Remove"},
	{Type: "group.member.remove.complete", Label: "Group Member Remove Complete"},
	{Type: "group.member.update", Label: "Group Member Update"},
	{Type: "group.member.update.complete", Label: "Group Member Update Complete"},
	{Type: "group.update", Label: "Group Update"},
	{Type: "group.update.complete", Label: "Group Update Complete"},
}

var eventLabels = func() map[string]string {
	out := make(map[string]string, len(fusionAuthEvents))
	for _, event := range fusionAuthEvents {
		out[event.Type] = event.Label
	}
	return out
}()

// FusionAuthEvents returns the webhook event types in display order.
func FusionAuthEvents() []Event {
	return append([]Event(nil), fusionAuthEvents...)
}

func IsKnownEvent(eventType string) bool {
	_, ok := eventLabels[eventType]
	return ok
}

func EventLabel(eventType string) string {
	return eventLabels[eventType]
}

// EventOptions renders the events as name/value options.
func EventOptions() []Option {
	out := make([]Option, 0, len(fusionAuthEvents))
	for _, event := range fusionAuthEvents {
		out = append(out, Option{Name: event.Label, Value: event.Type})
	}
	return out
}

var (
	IdentityProviderTypes = []Option{
		{Name: "Apple", Value: "Apple"},
		{Name: "Epic Games", Value: "EpicGames"},
		{Name: "External JWT", Value: "ExternalJWT"},
		{Name: "Facebook", Value: "Facebook"},
		{Name: "Google", Value: "Google"},
		{Name: "HYPR", Value: "HYPR"},
		{Name: "LinkedIn", Value: "LinkedIn"},
		{Name: "Nintendo", Value: "Nintendo"},
		{Name: "OpenID Connect", Value: "OpenIDConnect"},
		{Name: "SAMLv2", Value: "SAMLv2"},
		{Name: "SAMLv2 IdP Initiated", Value: "SAMLv2IdPInitiated"},
		{Name: "Sony", Value: "Sony"},
		{Name: "Steam", Value: "Steam"},
		{Name: "Twitch", Value: "Twitch"},
		{Name: "Twitter", Value: "Twitter"},
		{Name: "Xbox", Value: "Xbox"},
	}

	LambdaTypes = []Option{
		{Name: "JWT Populate", Value: "JWTPopulate"},
		{Name: "OpenID Reconcile", Value: "OpenIDReconcile"},
		{Name: "SAMLv2 Reconcile", Value: "SAMLv2Reconcile"},
		{Name: "SAMLv2 Populate", Value: "SAMLv2Populate"},
		{Name: "Apple Reconcile", Value: "AppleReconcile"},
		{Name: "Facebook Reconcile", Value: "FacebookReconcile"},
		{Name: "Google Reconcile", Value: "GoogleReconcile"},
		{Name: "Twitter Reconcile", Value: "TwitterReconcile"},
		{Name: "External JWT Reconcile", Value: "ExternalJWTReconcile"},
		{Name: "LDAP Connector Reconcile", Value: "LDAPConnectorReconcile"},
		{Name: "SCIM Server Group Request Converter", Value: "SCIMServerGroupRequestConverter"},
		{Name: "SCIM Server Group Response Converter", Value: "SCIMServerGroupResponseConverter"},
		{Name: "SCIM Server User Request Converter", Value: "SCIMServerUserRequestConverter"},
		{Name: "SCIM Server User Response Converter", Value: "SCIMServerUserResponseConverter"},
		{Name: "Self Service Registration Validation", Value: "SelfServiceRegistrationValidation"},
		{Name: "Client Credentials JWT Populate", Value: "ClientCredentialsJWTPopulate"},
	}

	FormTypes = []Option{
		{Name: "Registration", Value: "registration"},
		{Name: "Admin Registration", Value: "adminRegistration"},
		{Name: "Admin User", Value: "adminUser"},
		{Name: "Self Service User", Value: "selfServiceUser"},
	}

	FormFieldControls = []Option{
		{Name: "Checkbox", Value: "checkbox"},
		{Name: "Number", Value: "number"},
		{Name: "Password", Value: "password"},
		{Name: "Radio", Value: "radio"},
		{Name: "Select", Value: "select"},
		{Name: "Text", Value: "text"},
		{Name: "Textarea", Value: "textarea"},
	}

	FormFieldTypes = []Option{
		{Name: "Boolean", Value: "bool"},
		{Name: "Consent", Value: "consent"},
		{Name: "Date", Value: "date"},
		{Name: "Email", Value: "email"},
		{Name: "Number", Value: "number"},
		{Name: "String", Value: "string"},
	}

	LinkingStrategies = []Option{
		{Name: "Anonymous", Value: "Anonymous"},
		{Name: "Create Pending Link", Value: "CreatePendingLink"},
		{Name: "Disabled", Value: "Disabled"},
		{Name: "Link Anonymously", Value: "LinkAnonymously"},
		{Name: "Link By Email", Value: "LinkByEmail"},
		{Name: "Link By Username", Value: "LinkByUsername"},
	}

	TwoFactorMethods = []Option{
		{Name: "Authenticator", Value: "authenticator"},
		{Name: "Email", Value: "email"},
		{Name: "SMS", Value: "sms"},
	}
)

// HasOptionValue reports whether value is one of the option values.
func HasOptionValue(options []Option, value string) bool {
	for _, option := range options {
		if option.Value == value {
			return true
		}
	}
	return false
}
